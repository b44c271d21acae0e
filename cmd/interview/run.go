package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hiremind/hiremind-api/internal/interview"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptType   = "Type an answer"
	PromptRecord = "Answer with an audio file"
	PromptEnd    = "End the interview"

	endTimeout = 2 * time.Minute
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interview for an application",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("application", "a", "", "application id to interview for (required)")
	runCmd.Flags().String("api-url", "", "hiremind API base url")
	runCmd.Flags().Duration("duration", 0, "interview length, default 15m")
	_ = runCmd.MarkFlagRequired("application")

	viper.BindPFlag("api-url", runCmd.Flags().Lookup("api-url"))
	viper.BindPFlag("duration", runCmd.Flags().Lookup("duration"))
}

func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(logger.Options{
		Service: app,
		JSON:    viper.GetBool("json"),
		Debug:   viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil || config == nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	applicationID, _ := cmd.Flags().GetString("application")

	token, err := secrets.Load(secrets.Source{
		Name:  "api token",
		Value: config.Token,
		Env:   "HIREMIND_TOKEN",
		File:  config.TokenFile,
	})
	if err != nil {
		logger.Fatal(
			"loading api token",
			zap.Error(err),
			zap.String("hint", "set HIREMIND_TOKEN_FILE or HIREMIND_TOKEN, or the 'token-file' key in the configuration file"),
		)
	}

	backend := interview.NewAPIBackend(config.APIURL, token, config.Timeout)

	ic, err := backend.InterviewContext(ctx, applicationID)
	if err != nil {
		logger.Fatal("getting interview context", zap.Error(err), zap.String("application", applicationID))
	}

	fmt.Printf("Interview for %s at %s (%s)\n", ic.JobRole, ic.Company, config.Duration)

	recorder := &fileRecorder{}
	session := interview.NewSession(backend, recorder, newTerminalVoice(os.Stdout), interview.Options{
		ApplicationID: applicationID,
		JobRole:       ic.JobRole,
		Duration:      config.Duration,
		Log:           logger,
	})
	session.Subscribe(func(s interview.State) {
		logger.Debug("interview state", zap.Stringer("state", s))
	})

	if err := session.Start(ctx); err != nil {
		logger.Fatal("starting the interview", zap.Error(err))
	}

	if err := loop(ctx, session, recorder); err != nil && !errors.Is(err, errExit) {
		logger.Error("interview loop", zap.Error(err))
	}

	endCtx, cancel := context.WithTimeout(ctx, endTimeout)
	defer cancel()
	if err := session.End(endCtx); err != nil && !errors.Is(err, interview.ErrInvalidTransition) {
		logger.Fatal("ending the interview", zap.Error(err))
	}

	fmt.Println("Thank you! Your interview has been submitted.")
}

func loop(ctx context.Context, session *interview.Session, recorder *fileRecorder) error {
	prompt := promptui.Select{
		Label: "Your turn",
		Items: []string{PromptType, PromptRecord, PromptEnd},
	}

	for {
		select {
		case <-session.Done():
			fmt.Println("Time is up.")
			return nil
		default:
		}

		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return errExit
			}
			return err
		}

		switch action {
		case PromptType:
			answer, err := (&promptui.Prompt{Label: "Answer"}).Run()
			if err != nil {
				continue
			}
			err = session.SubmitText(ctx, answer)
			if turnOver(err) {
				return nil
			}
		case PromptRecord:
			path, err := (&promptui.Prompt{Label: "Audio file", Validate: validateAudioFile}).Run()
			if err != nil {
				continue
			}
			recorder.Stage(strings.TrimSpace(path))
			if err := session.StartSpeaking(ctx); turnOver(err) {
				return nil
			} else if err != nil {
				continue
			}
			if turnOver(session.StopSpeaking(ctx)) {
				return nil
			}
		case PromptEnd:
			return errExit
		}
	}
}

// turnOver reports whether the session ended under the current turn.
func turnOver(err error) bool {
	return errors.Is(err, interview.ErrEnded) || errors.Is(err, interview.ErrInvalidTransition)
}

func validateAudioFile(input string) error {
	info, err := os.Stat(strings.TrimSpace(input))
	if err != nil {
		return errors.New("file not found")
	}
	if info.IsDir() {
		return errors.New("a file is required")
	}
	return nil
}
