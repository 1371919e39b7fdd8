package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/observability"
	"github.com/spec-kit/parking-service/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	serverURL := flag.String("server", cfg.Terminal.ServerURL, "parking-access service base URL")
	statePath := flag.String("state", cfg.Terminal.StatePath, "path of the persisted session file")
	strictRoles := flag.Bool("strict-roles", cfg.Terminal.StrictRoles, "fail closed on unrecognized role claims")
	flag.Parse()

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	client := terminal.NewHTTPCollaborator(*serverURL, cfg.Terminal.RequestTimeout(), nil)
	sessions := terminal.NewSessionManager(terminal.NewFileStore(*statePath), logger)
	router := terminal.NewRoleRouter(*strictRoles, logger)
	flow := terminal.NewLoginFlow(client, sessions, logger)
	directory := terminal.NewStaffDirectory(client, sessions, logger)
	toggles := terminal.NewDutyToggleController(client, sessions, directory, logger)

	// The startup check must finish before any role view is offered.
	fmt.Println("Checking session...")
	if _, err := sessions.Restore(); err != nil {
		logger.Warn("session restore failed", zap.Error(err))
	}
	printView(router, sessions)

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()
	fmt.Println(`Commands: login <user> <pass> | request-access | logout | view | staff | toggle <id> <on|off> | create-staff <name> <user> <pass> <phone> | vehicles | entry <plate> <TWO_WHEELER|FOUR_WHEELER> | exit <plate> | quit`)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit-terminal":
			return
		case "view":
			printView(router, sessions)
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <user> <pass>")
				continue
			}
			runLogin(ctx, flow, router, sessions, fields[1], fields[2])
		case "request-access":
			msg, err := flow.RequestAccess(ctx)
			if err != nil {
				fmt.Println("error:", friendly(err))
				continue
			}
			fmt.Println(msg)
		case "logout":
			if err := flow.Logout(ctx); err != nil {
				fmt.Println("error:", friendly(err))
			}
			printView(router, sessions)
		case "staff":
			list, err := directory.Refresh(ctx)
			if err != nil {
				fmt.Println("error:", friendly(err))
				printView(router, sessions)
				continue
			}
			printStaff(list)
		case "toggle":
			if len(fields) != 3 {
				fmt.Println("usage: toggle <id> <on|off>   (current duty state)")
				continue
			}
			list, err := toggles.Toggle(ctx, fields[1], fields[2] == "on")
			if err != nil {
				fmt.Println("error:", friendly(err))
				printView(router, sessions)
				continue
			}
			printStaff(list)
		case "create-staff":
			if len(fields) != 5 {
				fmt.Println("usage: create-staff <name> <user> <pass> <phone>")
				continue
			}
			list, err := toggles.CreateStaff(ctx, terminal.CreateStaffInput{
				Name: fields[1], Username: fields[2], Password: fields[3], Phone: fields[4],
			})
			if err != nil {
				fmt.Println("error:", friendly(err))
				continue
			}
			fmt.Println("Staff created successfully!")
			printStaff(list)
		case "vehicles":
			list, err := client.ListVehicles(ctx, sessions.Token())
			if err != nil {
				handleStale(err, sessions)
				fmt.Println("error:", friendly(err))
				printView(router, sessions)
				continue
			}
			for _, v := range list {
				fmt.Printf("%-12s %-13s fee=%-5d %s\n", v.VehicleNumber, v.VehicleType, v.Fee, v.PaymentStatus)
			}
		case "entry":
			if len(fields) != 3 {
				fmt.Println("usage: entry <plate> <TWO_WHEELER|FOUR_WHEELER>")
				continue
			}
			if err := client.VehicleEntry(ctx, sessions.Token(), fields[1], fields[2]); err != nil {
				handleStale(err, sessions)
				fmt.Println("error:", friendly(err))
				continue
			}
			fmt.Printf("Vehicle %s has been checked in successfully.\n", strings.ToUpper(fields[1]))
		case "exit":
			if len(fields) != 2 {
				fmt.Println("usage: exit <plate>")
				continue
			}
			row, err := client.VehicleExit(ctx, sessions.Token(), fields[1])
			if err != nil {
				handleStale(err, sessions)
				fmt.Println("error:", friendly(err))
				continue
			}
			fmt.Printf("Vehicle %s checked out, fee %d (%s)\n", row.VehicleNumber, row.Fee, row.PaymentStatus)
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func runLogin(ctx context.Context, flow *terminal.LoginFlow, router *terminal.RoleRouter, sessions *terminal.SessionManager, user, pass string) {
	_, err := flow.Login(ctx, user, pass)
	if err != nil {
		var denied *terminal.AccessDeniedError
		if errors.As(err, &denied) {
			fmt.Println(denied.Message)
			fmt.Println("Run 'request-access' to notify the administrator.")
			return
		}
		fmt.Println("error:", friendly(err))
		return
	}
	printView(router, sessions)
}

func printView(router *terminal.RoleRouter, sessions *terminal.SessionManager) {
	session, phase := sessions.Current()
	view, err := router.Route(session, phase)
	if err != nil {
		// Fail closed: drop the session before showing login.
		_ = sessions.Terminate()
		view = terminal.ViewLogin
	}
	fmt.Println("view:", view)
}

func printStaff(list []terminal.StaffRecord) {
	for _, s := range list {
		status := "INACTIVE"
		if s.IsOnDuty {
			status = "ACTIVE"
		}
		pending := ""
		if s.AccessRequested {
			pending = " [access requested]"
		}
		fmt.Printf("%-36s %-16s @%-12s %s%s\n", s.ID, s.Name, s.Username, status, pending)
	}
}

func handleStale(err error, sessions *terminal.SessionManager) {
	if errors.Is(err, terminal.ErrStaleAuthorization) {
		_ = sessions.Terminate()
	}
}

func friendly(err error) string {
	switch {
	case errors.Is(err, terminal.ErrInvalidCredentials):
		return "Invalid credentials or server error"
	case errors.Is(err, terminal.ErrStaleAuthorization):
		return "Session expired, please log in again"
	case errors.Is(err, terminal.ErrBusy):
		return "Previous request still in progress"
	case errors.Is(err, terminal.ErrNoDenialContext):
		return "Nothing to request; log in first"
	default:
		return err.Error()
	}
}
