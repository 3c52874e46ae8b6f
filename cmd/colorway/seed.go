package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MJE43/colorway-poker/internal/engine"
	"github.com/MJE43/colorway-poker/internal/seedvault"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Manage the house secret and inspect seeds",
		Long: `Table server seeds are derived from a house secret kept in the OS
keyring (or the COLORWAY_KEYRING_FALLBACK file when no keyring is
available).`,
	}

	vault := func(cmd *cobra.Command) (*seedvault.Vault, string, error) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, "", err
		}
		return seedvault.New(cfg.KeyringService, cfg.KeyringFallback), cfg.HouseAccount, nil
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the house secret if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, account, err := vault(cmd)
			if err != nil {
				return err
			}
			secret, err := v.EnsureSecret(account)
			if err != nil {
				return err
			}
			fmt.Printf("house secret ready for %q (sha256 %s)\n", account, engine.HashServerSeed(secret))
			return nil
		},
	}

	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Replace the house secret and print the old one",
		Long: `Replace the house secret. The old secret is printed so every server
seed derived from it can be revealed and audited.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, account, err := vault(cmd)
			if err != nil {
				return err
			}
			old, next, err := v.Rotate(account)
			if err != nil {
				return err
			}
			if old != "" {
				fmt.Printf("revealed previous secret: %s\n", old)
			}
			fmt.Printf("new secret sha256 %s\n", engine.HashServerSeed(next))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the house secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, account, err := vault(cmd)
			if err != nil {
				return err
			}
			return v.Delete(account)
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash SERVER_SEED",
		Short: "Print the SHA-256 commitment of a server seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(engine.HashServerSeed(args[0]))
			return nil
		},
	}

	var (
		secret     string
		generation int
	)
	deriveCmd := &cobra.Command{
		Use:   "derive TABLE_ID",
		Short: "Recompute a table's server seed from a revealed house secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("table id: %w", err)
			}
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			seed := seedvault.DeriveServerSeed(secret, id, generation)
			fmt.Printf("server seed %s\nsha256      %s\n", seed, engine.HashServerSeed(seed))
			return nil
		},
	}
	deriveCmd.Flags().StringVar(&secret, "secret", "", "revealed house secret")
	deriveCmd.Flags().IntVar(&generation, "generation", 0, "seed generation (rotations since the table opened)")

	cmd.AddCommand(initCmd, rotateCmd, deleteCmd, hashCmd, deriveCmd)
	return cmd
}
