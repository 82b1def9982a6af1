// Command portalctl calls the portal backend from the shell and prints the
// decoded result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/medcare-portal/internal/app/bootstrap"
	"github.com/wolfman30/medcare-portal/internal/chat"
	appconfig "github.com/wolfman30/medcare-portal/internal/config"
	"github.com/wolfman30/medcare-portal/internal/resource"
	"github.com/wolfman30/medcare-portal/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], cfg, logger, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "portalctl:", err)
		os.Exit(1)
	}
}

type command struct {
	resource     string
	op           string
	id           string
	params       url.Values
	content      string
	receiver     string
	conversation string
}

func run(ctx context.Context, args []string, cfg *appconfig.Config, logger *logging.Logger, out io.Writer) error {
	fs := flag.NewFlagSet("portalctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	resourceName := fs.String("resource", "doctors", "doctors, specializations, packages, services, users, schedules, prescriptions, payments, blogs or chat")
	op := fs.String("op", "page", "list, page, get, details, toggle, active, delete; chat: send, conversations, messages")
	id := fs.String("id", "", "record id")
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")
	filter := fs.String("filter", "", "JSON filter forwarded in options")
	sortBy := fs.String("sort", "", "sort field, prefix with - for descending")
	content := fs.String("content", "", "chat message content")
	receiver := fs.String("receiver", "", "chat receiver id")
	conversation := fs.String("conversation", "", "chat conversation id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	params, err := listParams(*filter, *sortBy, *page, *limit)
	if err != nil {
		return err
	}

	clients, err := bootstrap.NewClients(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer clients.Close()

	result, err := dispatch(ctx, clients, command{
		resource:     strings.ToLower(*resourceName),
		op:           strings.ToLower(*op),
		id:           *id,
		params:       params,
		content:      *content,
		receiver:     *receiver,
		conversation: *conversation,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func listParams(filter, sortBy string, page, limit int) (url.Values, error) {
	var opts resource.Options
	if strings.TrimSpace(filter) != "" {
		if err := json.Unmarshal([]byte(filter), &opts.Filter); err != nil {
			return nil, fmt.Errorf("invalid -filter: %w", err)
		}
	}
	if field := strings.TrimSpace(sortBy); field != "" {
		if strings.HasPrefix(field, "-") {
			opts.Sort = resource.Desc(field[1:])
		} else {
			opts.Sort = resource.Asc(field)
		}
	}
	values, err := opts.Values()
	if err != nil {
		return nil, err
	}
	return resource.Merge(values, resource.PageParams(page, limit)), nil
}

func dispatch(ctx context.Context, c *bootstrap.Clients, cmd command) (any, error) {
	switch cmd.resource {
	case "doctors":
		switch cmd.op {
		case "details":
			return c.Doctors.GetDetails(ctx, cmd.id)
		case "toggle":
			return c.Doctors.ToggleActive(ctx, cmd.id)
		}
		return crud(ctx, c.Doctors.Client, cmd)
	case "specializations":
		return crud(ctx, c.Doctors.Specializations, cmd)
	case "packages":
		switch cmd.op {
		case "active":
			return c.Packages.GetActive(ctx)
		case "toggle":
			return c.Packages.ToggleActive(ctx, cmd.id)
		}
		return crud(ctx, c.Packages.Client, cmd)
	case "services":
		switch cmd.op {
		case "active":
			return c.Services.GetActive(ctx)
		case "toggle":
			return c.Services.ToggleActive(ctx, cmd.id)
		}
		return crud(ctx, c.Services.Client, cmd)
	case "users":
		switch cmd.op {
		case "details":
			return c.Users.GetDetails(ctx, cmd.id)
		case "toggle":
			return c.Users.ToggleActive(ctx, cmd.id)
		}
		return crud(ctx, c.Users.Client, cmd)
	case "schedules":
		return crud(ctx, c.Schedules.Client, cmd)
	case "prescriptions":
		if cmd.op == "details" {
			return c.Prescriptions.GetDetails(ctx, cmd.id)
		}
		return crud(ctx, c.Prescriptions.Client, cmd)
	case "payments":
		return crud(ctx, c.Payments.Client, cmd)
	case "blogs":
		if cmd.op == "toggle" {
			return c.Blogs.TogglePublished(ctx, cmd.id)
		}
		return crud(ctx, c.Blogs.Client, cmd)
	case "chat":
		return chatOp(ctx, c.Chat, cmd)
	}
	return nil, fmt.Errorf("unknown resource %q", cmd.resource)
}

func crud[T any](ctx context.Context, c *resource.Client[T], cmd command) (any, error) {
	switch cmd.op {
	case "list":
		return c.GetAll(ctx, cmd.params)
	case "page":
		return c.GetPaginated(ctx, cmd.params)
	case "get":
		return c.GetByID(ctx, cmd.id)
	case "delete":
		return c.Delete(ctx, cmd.id)
	}
	return nil, fmt.Errorf("op %q is not supported for %s", cmd.op, cmd.resource)
}

func chatOp(ctx context.Context, c *chat.Client, cmd command) (any, error) {
	switch cmd.op {
	case "send":
		return c.SendMessage(ctx, chat.SendMessageRequest{
			ConversationID: cmd.conversation,
			ReceiverID:     cmd.receiver,
			Content:        cmd.content,
		})
	case "conversations", "page":
		return c.ListConversations(ctx, cmd.params)
	case "messages":
		return c.GetMessages(ctx, cmd.conversation, cmd.params)
	}
	return nil, fmt.Errorf("op %q is not supported for chat", cmd.op)
}
