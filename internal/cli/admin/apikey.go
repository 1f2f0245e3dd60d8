package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/hirelens/internal/config"
	"github.com/cloo-solutions/hirelens/internal/database"
	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/repository"
	"github.com/cloo-solutions/hirelens/internal/service"
)

// APIKeyCmd manages keys directly in the database. Owners are opaque IDs; the
// first key for an owner is issued here and later ones can use the API.
func APIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
		Long:  "Create, list, and revoke API keys",
	}

	cmd.AddCommand(APIKeyCreateCmd())
	cmd.AddCommand(APIKeyListCmd())
	cmd.AddCommand(APIKeyRevokeCmd())

	return cmd
}

func APIKeyCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long:  "Create a new API key for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			name, _ := cmd.Flags().GetString("name")
			output, _ := cmd.Flags().GetString("output")

			pool, err := getDBPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			authSvc := service.NewAuthService(repository.NewAPIKeyRepository(pool), &service.DefaultUUIDGenerator{})
			return runAPIKeyCreate(cmd.Context(), cmd.OutOrStdout(), authSvc, owner, name, output)
		},
	}

	cmd.Flags().StringP("owner", "o", "", "Owner ID the key authenticates as (required)")
	cmd.Flags().StringP("name", "n", "", "API key name (required)")
	cmd.Flags().String("output", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

type keyCreator interface {
	CreateAPIKey(ctx context.Context, ownerID, name string) (string, error)
}

func runAPIKeyCreate(ctx context.Context, w io.Writer, svc keyCreator, owner, name, output string) error {
	token, err := svc.CreateAPIKey(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}

	if output == "json" {
		return writeJSON(w, map[string]string{
			"owner": owner,
			"name":  name,
			"token": token,
		})
	}

	fmt.Fprintf(w, "API key created for owner %s\n", owner)
	fmt.Fprintf(w, "Key Name: %s\n", name)
	fmt.Fprintf(w, "Token: %s\n", token)
	fmt.Fprintln(w, "\nSave this token now. It cannot be shown again.")
	return nil
}

func APIKeyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List API keys for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			output, _ := cmd.Flags().GetString("output")

			pool, err := getDBPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			keys, err := repository.NewAPIKeyRepository(pool).ListByOwner(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("failed to list API keys: %w", err)
			}
			return printAPIKeys(cmd.OutOrStdout(), owner, keys, output)
		},
	}

	cmd.Flags().StringP("owner", "o", "", "Owner ID (required)")
	cmd.Flags().String("output", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func printAPIKeys(w io.Writer, owner string, keys []*domain.APIKey, output string) error {
	if output == "json" {
		items := make([]map[string]any, len(keys))
		for i, key := range keys {
			items[i] = map[string]any{
				"id":         key.ID,
				"name":       key.Name,
				"owner_id":   key.OwnerID,
				"created_at": key.CreatedAt,
				"revoked_at": key.RevokedAt,
				"revoked":    key.IsRevoked(),
			}
		}
		return writeJSON(w, map[string]any{"items": items})
	}

	if len(keys) == 0 {
		fmt.Fprintf(w, "No API keys found for owner %s\n", owner)
		return nil
	}
	fmt.Fprintf(w, "API keys for owner %s:\n", owner)
	for _, key := range keys {
		status := "active"
		if key.IsRevoked() {
			status = "revoked"
		}
		fmt.Fprintf(w, "  %s: %s (%s, created: %s)\n", key.ID, key.Name, status, key.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func APIKeyRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Long:  "Revoke an API key by its ID regardless of owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := getDBPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.NewAPIKeyRepository(pool).Revoke(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to revoke API key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key %s revoked\n", args[0])
			return nil
		},
	}
	return cmd
}

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: 2})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
