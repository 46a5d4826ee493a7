// Package main runs the interactive social client: an authenticated
// shell over the timeline, following feed, profiles and the follow
// graph.
package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tecsocial/client/internal/api"
	"github.com/tecsocial/client/internal/cache"
	"github.com/tecsocial/client/internal/config"
	"github.com/tecsocial/client/internal/feed"
	"github.com/tecsocial/client/internal/logger"
	"github.com/tecsocial/client/internal/model"
	"github.com/tecsocial/client/internal/mutation"
	"github.com/tecsocial/client/internal/screen"
	"github.com/tecsocial/client/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// app wires the long-lived screens to one session, cache and engine.
type app struct {
	client  *api.Client
	session *session.Store
	engine  *mutation.Engine
	posts   *cache.Posts
	log     *zap.Logger

	auth      *screen.AuthScreen
	timeline  *screen.PostsScreen
	following *screen.FollowingScreen
	profile   *screen.ProfileScreen
	compose   *screen.ComposeScreen

	scanner *bufio.Scanner
}

func newApp(client *api.Client, sess *session.Store, log *zap.Logger) *app {
	a := &app{
		client:  client,
		session: sess,
		engine:  mutation.New(log),
		posts:   cache.NewPosts(),
		log:     log,
		scanner: bufio.NewScanner(os.Stdin),
	}
	a.auth = screen.NewAuthScreen(client, sess, log)
	a.timeline = screen.NewPostsScreen(client, sess, a.engine, a.posts, log)
	a.following = screen.NewFollowingScreen(client, sess, a.engine, a.posts, feed.New(client), log)
	a.profile = screen.NewProfileScreen(client, sess, a.engine, a.posts, log)
	a.compose = screen.NewComposeScreen(client, sess, a.posts, log)
	return a
}

// readLine reads one input line, trimmed. ok is false on EOF.
func (a *app) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	if !a.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.scanner.Text()), true
}

// readPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line otherwise.
func (a *app) readPassword(prompt string) (string, bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return a.readLine(prompt)
	}
	fmt.Print(prompt)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func printPost(p model.Post, viewerID int64) {
	marker := ""
	if p.Edited() {
		marker = " (edited)"
	}
	liked := ""
	if p.LikedBy(viewerID) {
		liked = " ♥"
	}
	fmt.Printf("#%d @%s: %s%s [%d likes%s]\n",
		p.ID, p.Username, p.Content, marker, len(p.Likes), liked)
}

func (a *app) printPosts(posts []model.Post) {
	if len(posts) == 0 {
		fmt.Println("No posts")
		return
	}
	cred, _ := a.session.Credential()
	for _, p := range posts {
		printPost(p, cred.UserID)
	}
}

func printProfile(p model.Profile) {
	fmt.Printf("@%s (id %d) — %d followers, %d following",
		p.Username, p.ID, int64(p.FollowerCount), int64(p.FollowingCount))
	if p.IsFollowing {
		fmt.Print(" [following]")
	}
	fmt.Println()
}

func parseID(arg string) (int64, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	return id, err == nil && id > 0
}

func (a *app) doSignup(ctx context.Context) {
	username, ok := a.readLine("username: ")
	if !ok {
		return
	}
	email, ok := a.readLine("email: ")
	if !ok {
		return
	}
	password, ok := a.readPassword("password: ")
	if !ok {
		return
	}
	res, err := a.auth.Signup(ctx, username, email, password)
	if err != nil {
		fmt.Println("Signup failed:", err)
		return
	}
	fmt.Printf("Welcome, @%s\n", res.Username)
}

func (a *app) doLogin(ctx context.Context) {
	email, ok := a.readLine("email: ")
	if !ok {
		return
	}
	password, ok := a.readPassword("password: ")
	if !ok {
		return
	}
	res, err := a.auth.Login(ctx, email, password)
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	fmt.Printf("Logged in as user %d\n", res.UserID)
}

func (a *app) showUser(ctx context.Context, userID int64) {
	s := screen.NewUserScreen(a.client, a.session, a.engine, a.posts, a.log, userID)
	defer s.Close()
	if err := s.Load(ctx); err != nil {
		fmt.Println("Load failed:", err)
		return
	}
	if profile, ok := s.Profile(); ok {
		printProfile(profile)
	}
	a.printPosts(s.Posts())
}

func (a *app) toggleFollow(ctx context.Context, userID int64) {
	s := screen.NewUserScreen(a.client, a.session, a.engine, a.posts, a.log, userID)
	defer s.Close()
	if err := s.Load(ctx); err != nil {
		fmt.Println("Load failed:", err)
		return
	}
	msg, err := s.ToggleFollow(ctx)
	if err != nil {
		fmt.Println("Follow failed:", err)
		return
	}
	fmt.Println(msg)
}

func (a *app) showFollowList(ctx context.Context, userID int64, kind screen.FollowKind) {
	s := screen.NewFollowListScreen(a.client, a.session, a.log, userID, kind)
	if err := s.Load(ctx); err != nil {
		fmt.Println("Load failed:", err)
		return
	}
	users := s.Users()
	if len(users) == 0 {
		fmt.Printf("No %s\n", kind)
		return
	}
	for _, u := range users {
		fmt.Printf("@%s (id %d)\n", u.Username, u.ID)
	}
}

const helpText = `Available commands:
  signup                 create an account
  login                  log in
  logout                 log out
  whoami                 show the current session
  posts                  show the global timeline
  feed                   show posts from followed accounts
  me                     show your profile and posts
  post <content>         publish a post
  edit <id> <content>    edit one of your posts
  delete <id>            delete one of your posts
  like <id>              like or unlike a post
  user <id>              show a user's profile and posts
  follow <id>            follow or unfollow a user
  followers <id>         list a user's followers
  following <id>         list who a user follows
  help                   show this message
  exit                   quit`

// repl runs the interactive shell loop.
func (a *app) repl(ctx context.Context) {
	for {
		line, ok := a.readLine("social> ")
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			fmt.Println(helpText)
		case "signup":
			a.doSignup(ctx)
		case "login":
			a.doLogin(ctx)
		case "logout":
			if err := a.auth.Logout(); err != nil {
				fmt.Println("Logout failed:", err)
			} else {
				fmt.Println("Logged out")
			}
		case "whoami":
			if cred, ok := a.session.Credential(); ok {
				fmt.Printf("Logged in as user %d\n", cred.UserID)
			} else {
				fmt.Printf("Not logged in (session: %s)\n", a.session.Phase())
			}
		case "posts":
			if err := a.timeline.Refresh(ctx); err != nil {
				fmt.Println("Load failed:", err)
				continue
			}
			a.printPosts(a.timeline.Posts())
		case "feed":
			if err := a.following.Refresh(ctx); err != nil {
				fmt.Println("Load failed:", err)
				continue
			}
			a.printPosts(a.following.Posts())
		case "me":
			if err := a.profile.Refresh(ctx); err != nil {
				fmt.Println("Load failed:", err)
				continue
			}
			if profile, ok := a.profile.Profile(); ok {
				printProfile(profile)
			}
			a.printPosts(a.profile.Posts())
		case "post":
			if len(args) < 2 {
				fmt.Println("Usage: post <content>")
				continue
			}
			post, err := a.compose.Submit(ctx, strings.Join(args[1:], " "))
			if err != nil {
				fmt.Println("Post failed:", err)
				continue
			}
			fmt.Printf("Published post #%d\n", post.ID)
		case "edit":
			if len(args) < 3 {
				fmt.Println("Usage: edit <id> <content>")
				continue
			}
			id, ok := parseID(args[1])
			if !ok {
				fmt.Println("Usage: edit <id> <content>")
				continue
			}
			// Edits go through the profile screen, which only holds the
			// viewer's own posts.
			if err := a.profile.Refresh(ctx); err != nil {
				fmt.Println("Load failed:", err)
				continue
			}
			if err := a.profile.Edit(ctx, id, strings.Join(args[2:], " ")); err != nil {
				fmt.Println("Edit failed:", err)
				continue
			}
			fmt.Println("Post updated")
		case "delete":
			id, ok := int64(0), false
			if len(args) >= 2 {
				id, ok = parseID(args[1])
			}
			if !ok {
				fmt.Println("Usage: delete <id>")
				continue
			}
			if err := a.profile.Refresh(ctx); err != nil {
				fmt.Println("Load failed:", err)
				continue
			}
			if err := a.profile.Delete(ctx, id); err != nil {
				fmt.Println("Delete failed:", err)
				continue
			}
			fmt.Println("Post deleted")
		case "like":
			id, ok := int64(0), false
			if len(args) >= 2 {
				id, ok = parseID(args[1])
			}
			if !ok {
				fmt.Println("Usage: like <id>")
				continue
			}
			if err := a.timeline.Refresh(ctx); err != nil {
				fmt.Println("Load failed:", err)
				continue
			}
			if err := a.timeline.ToggleLike(ctx, id); err != nil {
				if errors.Is(err, mutation.ErrBusy) {
					fmt.Println("That post has a change in flight; try again")
				} else {
					fmt.Println("Like failed:", err)
				}
				continue
			}
			fmt.Println("Done")
		case "user":
			if id, ok := parseIDArg(args); ok {
				a.showUser(ctx, id)
			} else {
				fmt.Println("Usage: user <id>")
			}
		case "follow":
			if id, ok := parseIDArg(args); ok {
				a.toggleFollow(ctx, id)
			} else {
				fmt.Println("Usage: follow <id>")
			}
		case "followers":
			if id, ok := parseIDArg(args); ok {
				a.showFollowList(ctx, id, screen.Followers)
			} else {
				fmt.Println("Usage: followers <id>")
			}
		case "following":
			if id, ok := parseIDArg(args); ok {
				a.showFollowList(ctx, id, screen.Following)
			} else {
				fmt.Println("Usage: following <id>")
			}
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func parseIDArg(args []string) (int64, bool) {
	if len(args) < 2 {
		return 0, false
	}
	return parseID(args[1])
}

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	sess := session.New(session.NewFileStorage(options.CredentialFile), zapLogger)
	sess.Restore()
	if cred, ok := sess.Credential(); ok {
		fmt.Printf("Restored session for user %d\n", cred.UserID)
	}

	client := api.New(options.BaseURL, sess, zapLogger)
	a := newApp(client, sess, zapLogger)
	defer a.timeline.Close()
	defer a.following.Close()
	defer a.profile.Close()

	a.repl(context.Background())
}
