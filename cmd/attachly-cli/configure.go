package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/attachly/clientcli"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage gateway profiles",
	Long: `Manage gateway profiles in the configuration file.

A profile is a gateway URL plus the bearer token sent to it. Switch between
profiles with --profile or ATTACHLY_PROFILE.

Profiles are stored in ~/.attachly/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Long:  `List all profiles. The default profile is marked with an asterisk (*).`,
	RunE:  runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add or update a profile.

Without flags you are prompted for the gateway URL, the bearer token and
whether the profile becomes the default. With --gateway and --bearer the
profile is written without prompts, e.g. from a script:

  attachly-cli configure add local --gateway http://localhost:5708 \
      --bearer "$(attachly token --user $USER_ID)" --default

The gateway's /healthz endpoint is checked before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile",
	Long: `Show a profile, the default one when no name is given.
Tokens are masked unless --show-secrets is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var (
	showSecrets bool

	addGateway string
	addBearer  string
	addDefault bool
	addYes     bool
)

func init() {
	configureCmd.AddCommand(configureListCmd, configureAddCmd, configureRemoveCmd, configureSetDefaultCmd, configureShowCmd)

	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show tokens unmasked")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show tokens unmasked")

	configureAddCmd.Flags().StringVar(&addGateway, "gateway", "", "gateway URL (skips prompts together with --bearer)")
	configureAddCmd.Flags().StringVar(&addBearer, "bearer", "", "bearer token (skips prompts together with --gateway)")
	configureAddCmd.Flags().BoolVar(&addDefault, "default", false, "make this the default profile")
	configureAddCmd.Flags().BoolVarP(&addYes, "yes", "y", false, "save even if the gateway is unreachable")
	configureRemoveCmd.Flags().BoolVarP(&addYes, "yes", "y", false, "do not ask for confirmation")
}

// loadProfiles reads the profile file. With allowMissing a missing file
// yields an empty ConfigFile.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, string, error) {
	path := getConfigPath()
	cf, err := clientcli.LoadConfigFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return &clientcli.ConfigFile{}, path, nil
		}
		return nil, path, fmt.Errorf("load config: %w", err)
	}
	return cf, path, nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cf, _, err := loadProfiles(true)
	if err != nil {
		return err
	}

	if len(cf.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'attachly-cli configure add <name>' to create one.")
		return nil
	}

	return getFormatter().FormatProfileList(os.Stdout, cf.Profiles, cf.DefaultName(), showSecrets)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	cf, path, err := loadProfiles(true)
	if err != nil {
		return err
	}

	_, lookupErr := cf.GetProfile(name)
	exists := lookupErr == nil
	interactive := addGateway == "" || addBearer == ""

	if exists && interactive && !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	profile := clientcli.Profile{
		Name:     name,
		Endpoint: strings.TrimSuffix(addGateway, "/"),
		Token:    strings.TrimSpace(addBearer),
		Default:  addDefault || len(cf.Profiles) == 0,
	}

	if interactive {
		if err := promptProfile(&profile, len(cf.Profiles) == 0); err != nil {
			return handlePromptError(err)
		}
	}

	if err := profile.Validate(); err != nil {
		return err
	}
	if profile.Token == "" {
		return clientcli.ErrTokenRequired
	}

	fmt.Print("Testing connection... ")
	if connErr := checkGateway(cmd.Context(), profile.Endpoint); connErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", connErr)
		if !addYes && (!interactive || !confirm("Save profile anyway")) {
			fmt.Println("Not saved. Use --yes to save an unreachable profile.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	replaced := cf.Upsert(profile)
	if err := cf.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	verb := "added"
	if replaced {
		verb = "updated"
	}
	fmt.Printf("Profile '%s' %s.\n", name, verb)
	if profile.Default {
		fmt.Println("Set as default profile.")
	}
	return nil
}

// promptProfile fills the unset fields of p interactively.
func promptProfile(p *clientcli.Profile, first bool) error {
	if p.Endpoint == "" {
		endpoint, err := (&promptui.Prompt{
			Label:    "Gateway URL",
			Default:  clientcli.DefaultEndpoint,
			Validate: clientcli.ValidateEndpoint,
		}).Run()
		if err != nil {
			return err
		}
		p.Endpoint = strings.TrimSuffix(endpoint, "/")
	}

	if p.Token == "" {
		token, err := (&promptui.Prompt{
			Label: "Bearer Token",
			Mask:  '*',
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return clientcli.ErrTokenRequired
				}
				return nil
			},
		}).Run()
		if err != nil {
			return err
		}
		p.Token = strings.TrimSpace(token)
	}

	if !first && !p.Default {
		p.Default = confirm("Set as default profile")
	}
	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]
	cf, path, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if _, err := cf.GetProfile(name); err != nil {
		return err
	}

	if !addYes && !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := cf.RemoveProfile(name); err != nil {
		return err
	}
	if err := cf.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	cf, path, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if err := cf.SetDefault(args[0]); err != nil {
		return err
	}
	if err := cf.Save(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Default profile set to '%s'.\n", args[0])
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cf, _, err := loadProfiles(false)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cf.GetProfile(name)
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileShow(os.Stdout, *p, p.Name == cf.DefaultName(), showSecrets)
}

// checkGateway expects 200 from the gateway's /healthz.
func checkGateway(ctx context.Context, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

// confirm asks a yes/no question; anything but yes is no.
func confirm(label string) bool {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	return err == nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
