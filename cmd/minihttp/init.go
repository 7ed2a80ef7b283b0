package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file interactively",
	Long: `Prompt for the served directory, port, feature toggles, login
credentials and path filters, then write them as a YAML config file.

The file can be passed to the server with --config, or placed in the
working directory as config.yaml.`,
	// The config being written may not exist or be valid yet.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runInit,
}

var (
	initOutput string
	initForce  bool
)

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "config.yaml", "file to write")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(initCmd)
}

// initFile is the subset of the configuration that init asks about.
type initFile struct {
	UseDirectoryBrowser bool          `yaml:"use_directory_browser"`
	UsePathFilter       bool          `yaml:"use_path_filter"`
	UseBasicAuth        bool          `yaml:"use_basic_auth"`
	PathFilter          []string      `yaml:"path_filter,omitempty"`
	BasicAuth           *initAuth     `yaml:"basic_auth,omitempty"`
	Server              initServer    `yaml:"server"`
	Storage             initStorage   `yaml:"storage"`
	Log                 initLogConfig `yaml:"log"`
}

type initAuth struct {
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

type initServer struct {
	Port int `yaml:"port"`
}

type initStorage struct {
	Path string `yaml:"path"`
}

type initLogConfig struct {
	Level string `yaml:"level"`
}

// initAnswers are the raw prompt results.
type initAnswers struct {
	StoragePath      string
	Port             int
	DirectoryBrowser bool
	BasicAuth        bool
	Username         string
	Password         string
	TimeoutMinutes   int
	PathFilters      string // comma separated
}

func runInit(_ *cobra.Command, _ []string) error {
	if !initForce {
		if _, err := os.Stat(initOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
		}
	}

	answers, err := promptInit()
	if err != nil {
		return handlePromptError(err)
	}

	data, err := marshalInitFile(answers)
	if err != nil {
		return err
	}

	if err := os.WriteFile(initOutput, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", initOutput)
	return nil
}

func promptInit() (initAnswers, error) {
	var a initAnswers
	var err error

	storagePrompt := promptui.Prompt{
		Label:   "Directory to serve",
		Default: "./wwwroot",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("directory is required")
			}
			return nil
		},
	}
	if a.StoragePath, err = storagePrompt.Run(); err != nil {
		return a, err
	}

	portPrompt := promptui.Prompt{
		Label:    "Port",
		Default:  "8080",
		Validate: validatePort,
	}
	port, err := portPrompt.Run()
	if err != nil {
		return a, err
	}
	a.Port, _ = strconv.Atoi(port)

	if a.DirectoryBrowser, err = confirm("Enable directory listings"); err != nil {
		return a, err
	}

	filterPrompt := promptui.Prompt{
		Label:    "Blocked path patterns (comma separated, empty for none)",
		Validate: validatePatterns,
	}
	if a.PathFilters, err = filterPrompt.Run(); err != nil {
		return a, err
	}

	if a.BasicAuth, err = confirm("Require login"); err != nil {
		return a, err
	}
	if !a.BasicAuth {
		return a, nil
	}

	userPrompt := promptui.Prompt{
		Label: "Username",
		Validate: func(input string) error {
			if input == "" {
				return errors.New("username is required")
			}
			return nil
		},
	}
	if a.Username, err = userPrompt.Run(); err != nil {
		return a, err
	}

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
	}
	if a.Password, err = passwordPrompt.Run(); err != nil {
		return a, err
	}

	timeoutPrompt := promptui.Prompt{
		Label:   "Idle session timeout in minutes",
		Default: "60",
		Validate: func(input string) error {
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 {
				return errors.New("enter a whole number of minutes, at least 1")
			}
			return nil
		},
	}
	timeout, err := timeoutPrompt.Run()
	if err != nil {
		return a, err
	}
	a.TimeoutMinutes, _ = strconv.Atoi(timeout)

	return a, nil
}

// confirm asks a yes/no question. Answering no is not an error.
func confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	return err == nil, err
}

func validatePort(input string) error {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func validatePatterns(input string) error {
	for _, p := range splitPatterns(input) {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

func splitPatterns(input string) []string {
	var patterns []string
	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

func marshalInitFile(a initAnswers) ([]byte, error) {
	file := initFile{
		UseDirectoryBrowser: a.DirectoryBrowser,
		PathFilter:          splitPatterns(a.PathFilters),
		UseBasicAuth:        a.BasicAuth,
		Server:              initServer{Port: a.Port},
		Storage:             initStorage{Path: a.StoragePath},
		Log:                 initLogConfig{Level: "info"},
	}
	file.UsePathFilter = len(file.PathFilter) > 0

	if a.BasicAuth {
		file.BasicAuth = &initAuth{
			Username:       a.Username,
			Password:       a.Password,
			TimeoutMinutes: a.TimeoutMinutes,
		}
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
