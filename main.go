package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/customeros/mailagent/config"
	"github.com/customeros/mailagent/internal/database"
	"github.com/customeros/mailagent/internal/repository"
	"github.com/customeros/mailagent/internal/tracing"
	"github.com/customeros/mailagent/internal/utils"
	"github.com/customeros/mailagent/server"
)

const appSourceCli = "mailagent-cli"

func main() {
	app := &cli.App{
		Name:  "mailagent",
		Usage: "read, search, compose and send email from natural-language commands",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Start the REST API and scheduled jobs",
				Action: runServer,
			},
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: runMigrate,
			},
			{
				Name:      "run",
				Usage:     "Detect the intent of a command and run the matching tool",
				ArgsUsage: "<query>",
				Action:    runCommand,
			},
			{
				Name:      "chat",
				Usage:     "Send one message to the email agent",
				ArgsUsage: "<message>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "thread",
						Aliases: []string{"t"},
						Usage:   "conversation thread to continue",
					},
				},
				Action: runChat,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, errors.Wrap(err, "config initialization failed")
	}
	if cfg == nil {
		return nil, errors.New("config is empty")
	}
	return cfg, nil
}

func runServer(*cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Mailagent starting up...")

	srv, err := server.NewServer(cfg)
	if err != nil {
		return errors.Wrap(err, "server setup failed")
	}

	if err := srv.Run(); err != nil {
		return errors.Wrap(err, "server startup failed")
	}

	log.Println("Shutdown complete")
	return nil
}

func runMigrate(*cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.MailagentDatabaseConfig.Enabled() {
		return errors.New("MAILAGENT_POSTGRES_HOST is not set")
	}

	db, err := database.InitMailagentDatabase(cfg.MailagentDatabaseConfig)
	if err != nil {
		return err
	}

	if err := repository.MigrateMailagentDB(cfg.MailagentDatabaseConfig, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}
	log.Println("Database migration completed successfully")
	return nil
}

func runCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return cli.ShowSubcommandHelp(c)
	}

	rt, err := newCliRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	span, ctx := tracing.StartTracerSpan(cliContext(c.Context), "cli.run")
	defer span.Finish()
	tracing.TagComponentCli(span)

	result, err := rt.Services.CommandDispatcher.Run(ctx, query)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return printJSON(result)
}

func runChat(c *cli.Context) error {
	message := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(message) == "" {
		return cli.ShowSubcommandHelp(c)
	}

	rt, err := newCliRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	threadID := c.String("thread")
	ctx := utils.SetThreadIDInContext(cliContext(c.Context), threadID)

	span, ctx := tracing.StartTracerSpan(ctx, "cli.chat")
	defer span.Finish()
	tracing.TagComponentCli(span)

	reply, err := rt.Services.Agent.Chat(ctx, threadID, message)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	fmt.Println(reply.Reply)
	if threadID == "" {
		fmt.Fprintf(os.Stderr, "thread: %s\n", reply.ThreadID)
	}
	return nil
}

func newCliRuntime() (*server.Runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return server.NewRuntime(cfg)
}

func cliContext(parent context.Context) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	return utils.WithCustomContext(parent, &utils.CustomContext{AppSource: appSourceCli})
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
