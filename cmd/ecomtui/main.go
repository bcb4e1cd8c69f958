package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/app"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/config"
	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/util"
)

const defaultConfigPath = "internal/config/config.yaml"

type console struct {
	reader *bufio.Reader
	cfg    *config.Config
	log    zerolog.Logger
	app    *app.App
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	c := &console{
		reader: bufio.NewReader(os.Stdin),
		cfg:    cfg,
		log:    util.NewConsoleLogger(cfg.App.LogLevel),
	}
	defer c.closeApp()

	for {
		fmt.Println("\n=== Ecom Client ===")
		fmt.Println("1) Show configuration summary")
		fmt.Println("2) Edit address input")
		fmt.Println("3) Edit profile input")
		fmt.Println("4) Save config")
		fmt.Println("5) Connect, fund payer and check programs")
		fmt.Println("6) Initialize address account")
		fmt.Println("7) Update address")
		fmt.Println("8) Read address")
		fmt.Println("9) Initialize profile account")
		fmt.Println("10) Update profile")
		fmt.Println("11) Read profile")
		fmt.Println("12) Reload config from disk")
		fmt.Println("13) Show submissions")
		fmt.Println("0) Exit")
		fmt.Print("Select option: ")

		choice, ok := readChoice(c.reader)
		if !ok {
			fmt.Println()
			return
		}

		switch choice {
		case "1":
			printSummary(c.cfg)
		case "2":
			c.editAddress()
		case "3":
			c.editProfile()
		case "4":
			if err := saveConfig(c.cfg); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				fmt.Println("config saved")
			}
		case "5":
			c.setup()
		case "6":
			c.withApp(func(ctx context.Context, a *app.App) error {
				_, err := a.Service.InitializeAddressAccount(ctx)
				return err
			})
		case "7":
			c.withApp(func(ctx context.Context, a *app.App) error {
				_, err := a.Service.UpdateAddress(ctx, c.cfg.Steps.Address)
				return err
			})
		case "8":
			c.withApp(func(ctx context.Context, a *app.App) error {
				rec, err := a.Service.GetAddress(ctx)
				if err == nil {
					fmt.Println("Address:", rec.String())
				}
				return err
			})
		case "9":
			c.withApp(func(ctx context.Context, a *app.App) error {
				_, err := a.Service.InitializeProfileAccount(ctx)
				return err
			})
		case "10":
			p := c.cfg.Steps.Profile
			c.withApp(func(ctx context.Context, a *app.App) error {
				_, err := a.Service.UpdateProfile(ctx, p.Name, p.Date, p.Month, p.Year)
				return err
			})
		case "11":
			c.withApp(func(ctx context.Context, a *app.App) error {
				rec, err := a.Service.GetProfile(ctx)
				if err == nil {
					fmt.Println("Profile:", rec.String())
				}
				return err
			})
		case "12":
			reloaded, err := loadConfig()
			if err != nil {
				fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
			} else {
				c.cfg = reloaded
				c.closeApp()
				fmt.Println("config reloaded")
			}
		case "13":
			c.printSubmissions()
		case "0":
			return
		default:
			fmt.Println("unknown option")
		}
	}
}

func printSummary(cfg *config.Config) {
	fmt.Println("\n--- Configuration Summary ---")
	fmt.Printf("RPC: %s (%s, confirm via %s)\n", cfg.Cluster.RpcURL, cfg.Cluster.Commitment, cfg.Cluster.ConfirmMode)
	fmt.Println("Ecom program:   ", cfg.Programs.Ecom)
	fmt.Println("Address program:", cfg.Programs.Address)
	fmt.Println("Profile program:", cfg.Programs.Profile)
	fmt.Printf("Address input: %q\n", cfg.Steps.Address)
	p := cfg.Steps.Profile
	fmt.Printf("Profile input: %q %d/%d/%d\n", p.Name, p.Date, p.Month, p.Year)
	fmt.Println("Journal:", cfg.Journal.Path)
}

func (c *console) editAddress() {
	fmt.Println("\n--- Edit Address ---")
	c.cfg.Steps.Address = promptString(c.reader, "Address", c.cfg.Steps.Address)
}

func (c *console) editProfile() {
	fmt.Println("\n--- Edit Profile ---")
	p := &c.cfg.Steps.Profile
	p.Name = promptString(c.reader, "Name", p.Name)
	p.Date = promptUint32(c.reader, "Date", p.Date)
	p.Month = promptUint32(c.reader, "Month", p.Month)
	p.Year = promptUint32(c.reader, "Year", p.Year)
}

// setup runs the connection stages so later menu entries can submit instructions.
func (c *console) setup() {
	c.closeApp()
	a, err := app.Build(c.cfg, c.log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		return
	}
	c.app = a

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	for _, step := range a.Runner.Steps()[:4] {
		if err := step.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s failed: %v\n", step.Name, err)
			return
		}
	}
	if c.cfg.Programs.Profile != "" {
		if err := a.Service.SetProfileProgram(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "profile setup failed: %v\n", err)
			return
		}
	}
	fmt.Println("ready; payer", a.Service.Payer())
}

func (c *console) withApp(fn func(ctx context.Context, a *app.App) error) {
	if c.app == nil {
		fmt.Println("run option 5 first")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := fn(ctx, c.app); err != nil {
		fmt.Fprintf(os.Stderr, "failed: %v\n", err)
	}
}

func (c *console) printSubmissions() {
	if c.app == nil {
		fmt.Println("no submissions yet")
		return
	}
	receipts := c.app.Ledger.Snapshot()
	if len(receipts) == 0 {
		fmt.Println("no submissions yet")
		return
	}
	fmt.Println("\n--- Submissions ---")
	for _, r := range receipts {
		fmt.Printf("%s %-18s %-9s %s\n", r.Ts.Format("15:04:05"), r.Kind, r.Status, r.Signature)
	}
	for _, kind := range []string{"update_address", "update_profile"} {
		if last, ok := c.app.Ledger.Last(kind); ok {
			fmt.Printf("last %s: %s (%s)\n", kind, last.Status, last.Signature)
		}
	}
}

func (c *console) closeApp() {
	if c.app != nil {
		_ = c.app.Close()
		c.app = nil
	}
}

// readChoice returns the next trimmed line; ok is false once input is exhausted.
func readChoice(reader *bufio.Reader) (string, bool) {
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func promptString(reader *bufio.Reader, label, current string) string {
	fmt.Printf("%s [%s]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

func promptUint32(reader *bufio.Reader, label string, current uint32) uint32 {
	fmt.Printf("%s [%d]: ", label, current)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	val, err := strconv.ParseUint(line, 10, 32)
	if err != nil {
		fmt.Printf("invalid number, keeping %d\n", current)
		return current
	}
	return uint32(val)
}

func loadConfig() (*config.Config, error) {
	return config.Resolve(configPath())
}

func saveConfig(cfg *config.Config) error {
	return config.Save(configPath(), cfg)
}

func configPath() string {
	if v := os.Getenv("ECOM_CONFIG"); v != "" {
		return v
	}
	return defaultConfigPath
}
