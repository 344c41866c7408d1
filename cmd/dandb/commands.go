package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/birbparty/dandb-go/sdk"
)

// errUsage is returned for unknown commands and missing arguments
var errUsage = errors.New("usage")

// command is one CLI subcommand mapped onto a client call
type command struct {
	usage string
	run   func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error)
}

var commands = map[string]command{
	"search-duns": {
		usage: "search-duns <duns>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 1 {
				return nil, errUsage
			}
			return client.BusinessSearchByDUNS(ctx, args[0])
		},
	},
	"search-name": {
		usage: "search-name [-address a] [-city c] [-zip z] <name> <state>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			fs := flag.NewFlagSet("search-name", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			opts := &sdk.AddressOptions{}
			fs.StringVar(&opts.Address, "address", "", "street address")
			fs.StringVar(&opts.City, "city", "", "city")
			fs.StringVar(&opts.Zip, "zip", "", "zip code")
			if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
				return nil, errUsage
			}
			return client.BusinessSearchByNameAddress(ctx, fs.Arg(0), fs.Arg(1), opts)
		},
	},
	"search-phone": {
		usage: "search-phone <phone>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 1 {
				return nil, errUsage
			}
			return client.BusinessSearchByPhone(ctx, args[0])
		},
	},
	"intl-duns": {
		usage: "intl-duns <duns>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 1 {
				return nil, errUsage
			}
			return client.InternationalSearchByDUNS(ctx, args[0])
		},
	},
	"intl-name": {
		usage: "intl-name <name> <country>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 2 {
				return nil, errUsage
			}
			return client.InternationalSearchByNameCountry(ctx, args[0], args[1])
		},
	},
	"verified": {
		usage: "verified [-duns] <id>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			fs := flag.NewFlagSet("verified", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			byDUNS := fs.Bool("duns", false, "treat the id as a DUNS number")
			if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
				return nil, errUsage
			}
			if *byDUNS {
				return client.VerifiedProfileWithDUNS(ctx, fs.Arg(0))
			}
			return client.VerifiedProfile(ctx, fs.Arg(0))
		},
	},
	"recommendations": {
		usage: "recommendations <duns>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 1 {
				return nil, errUsage
			}
			return client.ProductRecommendations(ctx, args[0])
		},
	},
	"page": {
		usage: "page <page> <language>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 2 {
				return nil, errUsage
			}
			return client.PageFromCMS(ctx, args[0], args[1])
		},
	},
	"login": {
		usage: "login <email> <password>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 2 {
				return nil, errUsage
			}
			return client.UserToken(ctx, args[0], args[1])
		},
	},
	"refresh": {
		usage: "refresh <email> <refresh-token>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 2 {
				return nil, errUsage
			}
			return client.UserTokenRefresh(ctx, args[0], args[1])
		},
	},
	"token-status": userTokenCommand("token-status", func(c sdk.Client) func(context.Context, string) (*sdk.Response, error) {
		return c.UserTokenStatus
	}),
	"whoami": userTokenCommand("whoami", func(c sdk.Client) func(context.Context, string) (*sdk.Response, error) {
		return c.UserUsingToken
	}),
	"user": userTokenCommand("user", func(c sdk.Client) func(context.Context, string) (*sdk.Response, error) {
		return c.UserFullDetails
	}),
	"logout": userTokenCommand("logout", func(c sdk.Client) func(context.Context, string) (*sdk.Response, error) {
		return c.UserLogout
	}),
	"entitlements": userTokenCommand("entitlements", func(c sdk.Client) func(context.Context, string) (*sdk.Response, error) {
		return c.UserEntitlements
	}),
	"password-reset": {
		usage: "password-reset <email>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 1 {
				return nil, errUsage
			}
			return client.PasswordReset(ctx, args[0])
		},
	},
	"password-change": {
		usage: "password-change <user-token> <old-password> <new-password>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 3 {
				return nil, errUsage
			}
			return client.PasswordChange(ctx, args[0], args[1], args[2])
		},
	},
	"register": {
		usage: "register [-password p] [-accept-tos] <email> <first-name> <last-name>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			fs := flag.NewFlagSet("register", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			var reg sdk.Registration
			fs.StringVar(&reg.Password, "password", "", "account password")
			fs.BoolVar(&reg.AcceptedTOS, "accept-tos", false, "accept the terms of service")
			fs.StringVar(&reg.PhoneNumber, "phone", "", "phone number")
			fs.StringVar(&reg.AddressLine1, "address", "", "address line 1")
			fs.StringVar(&reg.City, "city", "", "city")
			fs.StringVar(&reg.StateCode, "state", "", "two letter state code")
			fs.StringVar(&reg.PostalCode, "zip", "", "postal code")
			if err := fs.Parse(args); err != nil || fs.NArg() != 3 {
				return nil, errUsage
			}
			reg.Email, reg.FirstName, reg.LastName = fs.Arg(0), fs.Arg(1), fs.Arg(2)
			return client.UserRegister(ctx, reg)
		},
	},
	"accept-tos": {
		usage: "accept-tos [-user-token t | -email e]",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			fs := flag.NewFlagSet("accept-tos", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			userToken := fs.String("user-token", "", "user token")
			email := fs.String("email", "", "account email")
			if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
				return nil, errUsage
			}
			return client.UserAcceptTOS(ctx, *userToken, *email)
		},
	},
	"entitle": {
		usage: "entitle [-single] [-payment-type FREE] [-price id] [-quantity n] [-duns d] [-agent id] <user-token> <product-id>...",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			fs := flag.NewFlagSet("entitle", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			single := fs.Bool("single", false, "use the single product endpoint")
			paymentType := fs.String("payment-type", "", "FREE, CREDIT_CARD or INVOICE")
			priceID := fs.String("price", "", "price id for every product")
			quantity := fs.Int("quantity", 1, "quantity for every product")
			duns := fs.String("duns", "", "DUNS number the products apply to")
			agent := fs.String("agent", "", "ordering agent id")
			confirm := fs.Bool("confirm", false, "send a confirmation email")
			if err := fs.Parse(args); err != nil || fs.NArg() < 2 {
				return nil, errUsage
			}

			order := sdk.NewOrder().
				SetPaymentType(*paymentType).
				SetSendConfirmationEmail(*confirm)
			if *agent != "" {
				order.SetAgent(sdk.NewAgent().SetAgentID(*agent))
			}
			for _, id := range fs.Args()[1:] {
				order.AddProduct(sdk.NewProduct().
					SetProductID(id).
					SetPriceID(*priceID).
					SetQuantity(*quantity).
					SetDUNS(*duns))
			}

			if *single {
				return client.AddSingleProductUserEntitlement(ctx, fs.Arg(0), order)
			}
			return client.AddUserEntitlements(ctx, fs.Arg(0), order)
		},
	},
	"email": {
		usage: "email [-name n] [-option key=value]... <to> <folder> <campaign> <message-id>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			fs := flag.NewFlagSet("email", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			name := fs.String("name", "", "recipient display name")
			options := optionFlag{}
			fs.Var(options, "option", "template option as key=value, repeatable")
			if err := fs.Parse(args); err != nil || fs.NArg() != 4 {
				return nil, errUsage
			}
			return client.PostEmail(ctx, sdk.Email{
				UserEmail:    fs.Arg(0),
				DisplayName:  *name,
				FolderName:   fs.Arg(1),
				CampaignName: fs.Arg(2),
				MessageID:    fs.Arg(3),
				Options:      options,
			})
		},
	},
	"authorize": {
		usage: "authorize [-state s] <user-token> <client-id> <redirect-uri>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			fs := flag.NewFlagSet("authorize", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			state := fs.String("state", "", "opaque state echoed back")
			if err := fs.Parse(args); err != nil || fs.NArg() != 3 {
				return nil, errUsage
			}
			return client.AuthCodeFromUserToken(ctx, fs.Arg(0), fs.Arg(1), fs.Arg(2), *state)
		},
	},
	"exchange-code": {
		usage: "exchange-code <code>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 1 {
				return nil, errUsage
			}
			return client.UserTokenFromAuthCode(ctx, args[0])
		},
	},
}

// userTokenCommand builds a command taking a single user token
func userTokenCommand(name string, call func(sdk.Client) func(context.Context, string) (*sdk.Response, error)) command {
	return command{
		usage: name + " <user-token>",
		run: func(ctx context.Context, client sdk.Client, args []string) (*sdk.Response, error) {
			if len(args) != 1 {
				return nil, errUsage
			}
			return call(client)(ctx, args[0])
		},
	}
}

// optionFlag collects repeated key=value flags into email template options
type optionFlag map[string]any

func (o optionFlag) String() string { return "" }

func (o optionFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("option %q is not key=value", value)
	}
	o[key] = val
	return nil
}

// InvalidResponseError reports an envelope whose meta.code is not 200
type InvalidResponseError struct {
	StatusCode int
	ErrorCode  string
}

func (e *InvalidResponseError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("request failed with code %d", e.StatusCode)
	}
	name, _ := sdk.ErrorCodeName(sdk.ErrorCode(e.ErrorCode))
	return fmt.Sprintf("request failed with code %d: %s %s", e.StatusCode, e.ErrorCode, name)
}

// run executes one command and writes its JSON result to out
func run(ctx context.Context, client sdk.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	if args[0] == "token" {
		token, ok, err := client.AccessToken(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"access_token": token, "ok": ok})
	}

	cmd, found := commands[args[0]]
	if !found {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	resp, err := cmd.run(ctx, client, args[1:])
	if errors.Is(err, errUsage) {
		return fmt.Errorf("%w: dandb %s", errUsage, cmd.usage)
	}
	if err != nil {
		return err
	}

	if err := writeJSON(out, resp); err != nil {
		return err
	}
	if !resp.IsValid() {
		code, _ := resp.ErrorCode()
		return &InvalidResponseError{StatusCode: resp.StatusCode(), ErrorCode: code}
	}
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// usage lists every command
func usage(out io.Writer) {
	fmt.Fprintln(out, "usage: dandb <command> [arguments]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  token")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(out, "  "+commands[name].usage)
	}
}
