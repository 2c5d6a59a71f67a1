// ideactl is a terminal front end for the idea board: it binds the idea
// collection store to a textual list/detail presentation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yamoridev/ideaboard"
	"github.com/yamoridev/ideaboard/client"
	"github.com/yamoridev/ideaboard/store"
)

var (
	serverURL string
	token     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "ideactl",
		Short:         "Community idea board client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "idea board server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("IDEABOARD_TOKEN"), "bearer token (defaults to IDEABOARD_TOKEN)")

	rootCmd.AddCommand(
		registerCmd(),
		listCmd(),
		showCmd(),
		createCmd(),
		editCmd(),
		statusCmd(),
		deleteCmd(),
		watchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newStore wires the HTTP adapter and the identity carried by the bearer
// token into a fresh idea store.
func newStore() (*store.Store, *ideaboard.Identity) {
	remote := client.New(serverURL)
	identity := identityFromToken(token)
	if token != "" {
		remote.SetToken(token)
	}
	st := store.New(remoteAdapter{remote}, store.StaticIdentity{Identity: identity})
	return st, identity
}

// remoteAdapter narrows *client.Subscription to the store's Subscription
// interface.
type remoteAdapter struct {
	*client.Client
}

func (r remoteAdapter) Subscribe(ctx context.Context, onChange func()) (store.Subscription, error) {
	return r.Client.Subscribe(ctx, onChange)
}

func registerCmd() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Obtain a bearer token for an identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := client.New(serverURL)
			issued, err := remote.Register(cmd.Context(), ideaboard.Identity{
				ID:          id,
				DisplayName: name,
			})
			if err != nil {
				return err
			}
			fmt.Println(issued)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "identity id")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("name")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all ideas, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, identity := newStore()
			if err := st.FetchAll(cmd.Context()); err != nil {
				return err
			}
			renderList(cmd.OutOrStdout(), store.Project(st.Ideas(), identity))
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one idea in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := client.New(serverURL)
			if token != "" {
				remote.SetToken(token)
			}
			idea, err := remote.GetIdea(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderDetail(cmd.OutOrStdout(), store.ProjectOne(idea, identityFromToken(token)))
			return nil
		},
	}
}

func createCmd() *cobra.Command {
	var title, description, domain, author string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new idea",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _ := newStore()
			input := ideaboard.CreateIdeaInput{
				Title:       title,
				Description: description,
				AuthorName:  author,
			}
			if domain != "" {
				input.Domain = &domain
			}
			if err := st.CreateIdea(cmd.Context(), input); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Idea submitted")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "idea title")
	cmd.Flags().StringVar(&description, "description", "", "idea description")
	cmd.Flags().StringVar(&domain, "domain", "", "optional classification tag")
	cmd.Flags().StringVar(&author, "author", "", "display name shown on the idea")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("author")
	return cmd
}

func editCmd() *cobra.Command {
	var title, description, domain string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an idea you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _ := newStore()
			var input ideaboard.UpdateIdeaInput
			if cmd.Flags().Changed("title") {
				input.Title = &title
			}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}
			if cmd.Flags().Changed("domain") {
				input.Domain = &domain
			}
			if err := st.UpdateIdea(cmd.Context(), args[0], input); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Idea updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&domain, "domain", "", "new classification tag")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <open|in_progress|completed>",
		Short: "Move an idea you own to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _ := newStore()
			err := st.UpdateIdeaStatus(cmd.Context(), args[0], ideaboard.IdeaStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Status updated")
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an idea you own (irreversible)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _ := newStore()
			if err := st.DeleteIdea(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Idea deleted")
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the board live, re-rendering on every change",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, identity := newStore()
			st.AddObserver(&consoleObserver{out: cmd.OutOrStdout(), identity: identity})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := st.Attach(ctx); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "initial fetch failed:", err)
			}
			defer st.Detach()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}
