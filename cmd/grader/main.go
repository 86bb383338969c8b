package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	awssqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/algojudge/grader/api"
	"github.com/algojudge/grader/internal/attempts"
	"github.com/algojudge/grader/internal/behave"
	"github.com/algojudge/grader/internal/environment"
	"github.com/algojudge/grader/internal/gatherer/sqsgath"
	"github.com/algojudge/grader/internal/gatherer/termgath"
	"github.com/algojudge/grader/internal/grading"
	"github.com/algojudge/grader/internal/problems"
	"github.com/algojudge/grader/internal/sandbox"
	"github.com/algojudge/grader/internal/xdg"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	})))

	cmd := &cli.Command{
		Name:  "grader",
		Usage: "grade coding-problem submissions in a sandboxed execution service",
		Commands: []*cli.Command{
			serveCmd(),
			gradeCmd(),
			behaveCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("grader exited", "error", err)
		os.Exit(1)
	}
}

// deps wires the shared pipeline dependencies from the environment.
type deps struct {
	grader *grading.Grader
	cfg    *environment.EnvConfig
	sqs    *sqs.Client
}

func setup(ctx context.Context) (*deps, error) {
	cfg, err := environment.ReadEnvConfig()
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	cacheDir := xdg.AppCacheDir("algojudge-grader")
	fetcher := problems.NewS3Fetcher(s3.NewFromConfig(awsCfg), cfg.TestsBucket, cfg.TestsPrefix)
	store, err := problems.NewStore(cacheDir, fetcher.Fetch)
	if err != nil {
		return nil, err
	}

	grader := grading.New(sandbox.New(cfg.SandboxURL, cfg.SandboxToken), store)

	if cfg.NatsURL != "" {
		sink, err := attempts.NewPublisher(cfg.NatsURL)
		if err != nil {
			slog.Warn("attempt publisher unavailable", "error", err)
		} else {
			grader.WithAttemptSink(sink)
		}
	}

	return &deps{
		grader: grader,
		cfg:    cfg,
		sqs:    sqs.NewFromConfig(awsCfg),
	}, nil
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "consume grading requests from the submission queue",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Value: 4, Usage: "max concurrent grading runs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := setup(ctx)
			if err != nil {
				return err
			}
			if d.cfg.SubmQueueURL == "" {
				return fmt.Errorf("SUBM_SQS_QUEUE_URL is not set")
			}
			return serve(ctx, d, int(cmd.Int("workers")))
		},
	}
}

func serve(ctx context.Context, d *deps, workers int) error {
	slog.Info("listening for grading requests", "queue", d.cfg.SubmQueueURL, "workers", workers)

	errs, ctx := errgroup.WithContext(ctx)
	errs.SetLimit(workers + 1)

	for {
		out, err := d.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            &d.cfg.SubmQueueURL,
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("receive message", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, m := range out.Messages {
			errs.Go(func() error {
				handleMessage(ctx, d, m)
				return nil
			})
		}
	}
	return errs.Wait()
}

func handleMessage(ctx context.Context, d *deps, m awssqstypes.Message) {
	var req api.GradeReq
	if err := json.Unmarshal([]byte(*m.Body), &req); err != nil {
		slog.Error("malformed grading request, dropping", "error", err)
		deleteMessage(ctx, d, m)
		return
	}

	resQueue := req.ResQueueUrl
	if resQueue == "" {
		resQueue = d.cfg.ResponseQueueURL
	}

	slog.Info("grading request received", "grade", req.GradeUuid, "problem", req.ProblemID)
	d.grader.Grade(ctx, &req, sqsgath.New(d.sqs, resQueue))
	deleteMessage(ctx, d, m)
}

func deleteMessage(ctx context.Context, d *deps, m awssqstypes.Message) {
	_, err := d.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &d.cfg.SubmQueueURL,
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		slog.Error("delete message", "error", err)
	}
}

func gradeCmd() *cli.Command {
	return &cli.Command{
		Name:  "grade",
		Usage: "grade a single submission from a local file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "code", Required: true, Usage: "path to the submission source"},
			&cli.StringFlag{Name: "problem", Required: true, Usage: "problem id, e.g. two-sum"},
			&cli.StringFlag{Name: "lang", Value: "python3", Usage: "language id"},
			&cli.BoolFlag{Name: "examples-only", Usage: "grade only the example tests"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := setup(ctx)
			if err != nil {
				return err
			}

			code, err := os.ReadFile(cmd.String("code"))
			if err != nil {
				return fmt.Errorf("read submission: %w", err)
			}

			req := &api.GradeReq{
				GradeUuid:    uuid.New().String(),
				LangID:       cmd.String("lang"),
				Code:         string(code),
				ProblemID:    problems.NormalizeProblemID(cmd.String("problem")),
				ExamplesOnly: cmd.Bool("examples-only"),
			}

			resp := d.grader.Grade(ctx, req, termgath.New())
			if resp.ErrorMessage != nil {
				return fmt.Errorf("grading failed: %s", *resp.ErrorMessage)
			}
			if resp.PassedCount != len(resp.Verdicts) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func behaveCmd() *cli.Command {
	return &cli.Command{
		Name:  "behave",
		Usage: "run a TOML scenario suite against the pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "path to the scenario TOML file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := setup(ctx)
			if err != nil {
				return err
			}

			cases, err := behave.Parse(cmd.String("file"))
			if err != nil {
				return err
			}

			failed := 0
			for _, c := range cases {
				resp := d.grader.Grade(ctx, &c.Request, termgath.New())
				mismatches := behave.Check(c, resp)
				if len(mismatches) == 0 {
					fmt.Printf("%s %s\n", color.GreenString("PASS"), c.Name)
					continue
				}
				failed++
				fmt.Printf("%s %s\n", color.RedString("FAIL"), c.Name)
				for _, m := range mismatches {
					fmt.Printf("  %s\n", m)
				}
			}

			if failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d scenarios failed", failed, len(cases)), 1)
			}
			fmt.Printf("all %d scenarios passed\n", len(cases))
			return nil
		},
	}
}
