package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Sairaj-wayal-20/ATS-sys/internal/prompt"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/report"
	"github.com/Sairaj-wayal-20/ATS-sys/internal/screening"
)

const (
	PromptYes         = "Yes"
	PromptNo          = "No"
	PromptBack        = "back"
	PromptShowResults = "Show last results"
	PromptSavePDF     = "Save response as PDF"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var sessionCmd = &cobra.Command{
	Use:   "session [resume.pdf...]",
	Short: "Evaluate resumes in an interactive terminal session",
	Run: func(cmd *cobra.Command, args []string) {
		runSession(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().String("job-description-file", "", "file with the job description text")
	sessionCmd.Flags().StringSlice("resume", nil, "resume PDF to evaluate (repeatable)")
	sessionCmd.Flags().String("variant", "", "run a single evaluation (1-4 or a variant name) and exit")
	sessionCmd.Flags().StringP("output-dir", "o", "", "directory for exported PDF files")

	viper.BindPFlag("session.output-dir", sessionCmd.Flags().Lookup("output-dir"))
}

type session struct {
	runner    screening.Runner
	reports   *report.Writer
	logger    *zap.Logger
	out       io.Writer
	outputDir string

	jobDescription string
	resumes        []screening.Submission

	last        []screening.Result
	lastVariant prompt.Variant
}

func runSession(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := newLogger(viper.GetViper())
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig(viper.GetViper())
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	pipeline, err := newPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the pipeline", zap.Error(err))
	}

	s := &session{
		runner:    pipeline,
		reports:   report.NewWriter(config.Report),
		logger:    logger,
		out:       os.Stdout,
		outputDir: config.Session.OutputDir,
	}

	jdFile, _ := cmd.Flags().GetString("job-description-file")
	if s.jobDescription, err = readJobDescription(jdFile); err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}

	flagResumes, _ := cmd.Flags().GetStringSlice("resume")
	if s.resumes, err = loadResumes(append(flagResumes, args...)); err != nil {
		logger.Fatal("reading resumes", zap.Error(err))
	}

	logger.Info("session started", zap.Int("resumes", len(s.resumes)))

	if selector, _ := cmd.Flags().GetString("variant"); selector != "" {
		variant, err := prompt.ParseVariant(selector)
		if err != nil {
			logger.Fatal("parsing variant", zap.Error(err))
		}
		if err := s.evaluate(ctx, variant); err != nil {
			logger.Fatal("evaluation failed", zap.Error(err))
		}
		if variant.ProducesDocument() {
			if _, err := s.saveAll(); err != nil {
				logger.Fatal("saving pdf files", zap.Error(err))
			}
		}
		return
	}

	if s.jobDescription == "" {
		jd, err := (&promptui.Prompt{Label: "Job Description"}).Run()
		if err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}
		s.jobDescription = jd
	}

	menu := promptui.Select{
		Label: "Choose an action",
		Items: menuItems(),
		Size:  len(menuItems()),
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			if errors.Is(err, context.Canceled) {
				logger.Info("exiting", zap.String("reason", "interrupted"))
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func menuItems() []string {
	items := make([]string, 0, len(prompt.Variants())+3)
	for _, v := range prompt.Variants() {
		items = append(items, v.Label())
	}
	return append(items, PromptShowResults, PromptSavePDF, PromptExit)
}

func variantByLabel(label string) (prompt.Variant, bool) {
	for _, v := range prompt.Variants() {
		if v.Label() == label {
			return v, true
		}
	}
	return 0, false
}

func (s *session) handleAction(ctx context.Context, action string) error {
	if variant, ok := variantByLabel(action); ok {
		if err := s.evaluate(ctx, variant); err != nil {
			return err
		}
		if variant.ProducesDocument() && s.hasResponses() && confirm("Save the responses as PDF?") {
			_, err := s.saveAll()
			return err
		}
		return nil
	}

	switch action {
	case PromptShowResults:
		if len(s.last) == 0 {
			fmt.Fprintln(s.out, "No results yet")
			return nil
		}
		s.print(s.last)
		return nil
	case PromptSavePDF:
		return s.saveSelected()
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// evaluate runs the batch and prints the outcome. A configuration error is printed once and
// returned only when the batch was cancelled.
func (s *session) evaluate(ctx context.Context, variant prompt.Variant) error {
	results, err := s.runner.Run(ctx, screening.Batch{
		JobDescription: s.jobDescription,
		Variant:        variant,
		Resumes:        s.resumes,
	})
	switch {
	case errors.Is(err, screening.ErrNoResumes):
		fmt.Fprintln(s.out, screening.NoResumesMessage)
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case err != nil:
		fmt.Fprintln(s.out, err.Error())
		return nil
	}

	s.last = results
	s.lastVariant = variant
	s.print(results)
	return nil
}

func (s *session) print(results []screening.Result) {
	for _, result := range results {
		if result.Failed() {
			fmt.Fprintln(s.out, result.ErrorMessage())
			continue
		}
		fmt.Fprintln(s.out, result.Title())
		fmt.Fprintln(s.out, result.Response)
		fmt.Fprintln(s.out)
	}
}

func (s *session) hasResponses() bool {
	for _, r := range s.last {
		if !r.Failed() {
			return true
		}
	}
	return false
}

// saveAll exports every successful response of the last batch.
func (s *session) saveAll() ([]string, error) {
	used := make(map[string]int)
	var paths []string
	for _, result := range s.last {
		if result.Failed() {
			continue
		}

		label := result.Name
		used[label]++
		if n := used[label]; n > 1 {
			label += "_" + strconv.Itoa(n)
		}

		path, err := s.save(result, label)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *session) saveSelected() error {
	if !s.hasResponses() {
		fmt.Fprintln(s.out, "No responses to save")
		return nil
	}

	items := make([]string, 0, len(s.last)+1)
	index := make(map[string]int, len(s.last))
	for i, result := range s.last {
		if result.Failed() {
			continue
		}
		item := fmt.Sprintf("%d. %s", i+1, result.Title())
		items = append(items, item)
		index[item] = i
	}

	selector := promptui.Select{
		Label: "Choose a response and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := selector.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	i := index[selected]
	label := s.last[i].Name
	if label == screening.UnknownName {
		label = strconv.Itoa(i + 1)
	}

	_, err = s.save(s.last[i], label)
	return err
}

func (s *session) save(result screening.Result, label string) (string, error) {
	data, err := s.reports.Render(result.Response)
	if err != nil {
		return "", fmt.Errorf("render pdf for %s: %w", result.FileName, err)
	}

	dir := s.outputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, report.FileName(label))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}

	fmt.Fprintf(s.out, "Saved %s\n", path)
	s.logger.Info("saved response as pdf", zap.String("path", path), zap.String("file_name", result.FileName))
	return path, nil
}

func confirm(label string) bool {
	p := promptui.Select{Label: label, Items: []string{PromptYes, PromptNo}}
	_, answer, err := p.Run()
	return err == nil && answer == PromptYes
}

func readJobDescription(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func loadResumes(paths []string) ([]screening.Submission, error) {
	submissions := make([]screening.Submission, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read resume: %w", err)
		}
		submissions = append(submissions, screening.Submission{FileName: filepath.Base(path), Data: data})
	}
	return submissions, nil
}
