package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bankingSystem/internal/banking"
	"bankingSystem/internal/config"
	"bankingSystem/internal/logger"
	"bankingSystem/models"
	"bankingSystem/repository"
)

// app carries flag values and the opened BankingSystem across subcommands.
type app struct {
	storage  config.StorageConfig
	logLevel string
	logEnv   string

	id       string
	passcode string

	in     io.Reader
	out    io.Writer
	bank   *banking.System
	closer io.Closer
	log    *zap.Logger
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	root, a := newRootCmd(cfg, os.Stdin, os.Stdout)
	err = root.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
		fmt.Fprintln(os.Stderr, "close store:", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The caller closes the returned app after
// Execute, whether or not the command failed.
func newRootCmd(cfg *config.Config, in io.Reader, out io.Writer) (*cobra.Command, *app) {
	a := &app{storage: cfg.Storage, logLevel: cfg.Log.Level, logEnv: cfg.Log.Env, in: in, out: out}

	root := &cobra.Command{
		Use:          "bankctl",
		Short:        "Local banking console: create accounts, move money, recharge phones",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(in)

	pf := root.PersistentFlags()
	pf.StringVar(&a.storage.File, "file", a.storage.File, "accounts file (env ACCOUNTS_FILE)")
	pf.StringVar(&a.storage.Driver, "driver", a.storage.Driver, "storage driver: file|sqlite (env STORAGE_DRIVER)")
	pf.StringVar(&a.storage.SQLitePath, "db", a.storage.SQLitePath, "sqlite database path (env DB_PATH)")
	pf.StringVar(&a.logLevel, "log-level", a.logLevel, "log level: debug|info|warn|error (env LOG_LEVEL)")

	root.AddCommand(
		a.createCmd(),
		a.listCmd(),
		a.balanceCmd(),
		a.amountCmd("deposit", "Add money to your account", a.deposit),
		a.amountCmd("withdraw", "Take money out of your account", a.withdraw),
		a.transferCmd(),
		a.rechargeCmd(),
		a.deleteCmd(),
	)
	return root, a
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	l, err := logger.New(logger.Config{Env: a.logEnv, Level: a.logLevel, Service: "bankctl"})
	if err != nil {
		return err
	}
	a.log = l
	a.storage.Driver = strings.ToLower(strings.TrimSpace(a.storage.Driver))
	store, closer, err := repository.Open(a.storage)
	if err != nil {
		return err
	}
	a.closer = closer
	a.bank, err = banking.New(ctx, store, banking.WithLogger(l))
	return err
}

func (a *app) close() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// withCredentials adds the --id/--passcode flags every account command needs.
func (a *app) withCredentials(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().StringVar(&a.id, "id", "", "account ID")
	cmd.Flags().StringVar(&a.passcode, "passcode", "", "account passcode")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("passcode")
	return cmd
}

func (a *app) login(ctx context.Context) (models.Account, error) {
	return a.bank.Login(ctx, a.id, a.passcode)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", models.ErrInvalidAmount, s)
	}
	return d, nil
}

func (a *app) createCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new account and print its ID and passcode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := models.ParseCategory(category)
			if err != nil {
				return err
			}
			acc, err := a.bank.CreateAccount(cmd.Context(), cat)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Account created (%s)\nID: %s\nPasscode: %s\n", acc.Category, acc.ID, acc.Passcode)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "personal", "account category: personal|business")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts (passcodes are not shown)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := a.bank.Accounts()
			if len(accounts) == 0 {
				fmt.Fprintln(a.out, "no accounts")
				return nil
			}
			for _, acc := range accounts {
				fmt.Fprintf(a.out, "%s\t%-8s\t%s\n", acc.ID, acc.Category, models.FormatNu(acc.Balance))
			}
			return nil
		},
	}
}

func (a *app) balanceCmd() *cobra.Command {
	return a.withCredentials(&cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s (%s)\nCurrent balance: %s\n", acc.ID, acc.Category, models.FormatNu(acc.Balance))
			return nil
		},
	})
}

type amountOp func(ctx context.Context, id string, amount decimal.Decimal) (models.Receipt, error)

func (a *app) deposit(ctx context.Context, id string, amount decimal.Decimal) (models.Receipt, error) {
	return a.bank.Deposit(ctx, id, amount)
}

func (a *app) withdraw(ctx context.Context, id string, amount decimal.Decimal) (models.Receipt, error) {
	return a.bank.Withdraw(ctx, id, amount)
}

func (a *app) amountCmd(name, short string, op amountOp) *cobra.Command {
	return a.withCredentials(&cobra.Command{
		Use:   name + " AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			acc, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			r, err := op(cmd.Context(), acc.ID, amount)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, r.String())
			return nil
		},
	})
}

func (a *app) transferCmd() *cobra.Command {
	return a.withCredentials(&cobra.Command{
		Use:   "transfer TO AMOUNT",
		Short: "Send money to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			acc, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			r, err := a.bank.Transfer(cmd.Context(), acc.ID, args[0], amount)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, r.String())
			return nil
		},
	})
}

func (a *app) rechargeCmd() *cobra.Command {
	return a.withCredentials(&cobra.Command{
		Use:   "recharge PHONE AMOUNT",
		Short: "Top up a mobile number (8 digits, starting with 77 or 17)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			acc, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			r, err := a.bank.Recharge(cmd.Context(), acc.ID, args[0], amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n", r.String(), r.Operator)
			return nil
		},
	})
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := a.withCredentials(&cobra.Command{
		Use:   "delete",
		Short: "Delete your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := a.login(cmd.Context())
			if err != nil {
				return err
			}
			if !yes && !a.confirm(fmt.Sprintf("Delete account %s? [y/N] ", acc.ID)) {
				fmt.Fprintln(a.out, "aborted")
				return nil
			}
			if err := a.bank.DeleteAccount(cmd.Context(), acc.ID); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Account deleted successfully.")
			return nil
		},
	})
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprint(a.out, prompt)
	line, _ := bufio.NewReader(a.in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
