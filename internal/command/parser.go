// Package command turns a chat text line into a typed command.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Name is the command word without the leading slash.
type Name string

const (
	Help   Name = "help"
	Rest   Name = "rest"
	Dish   Name = "dish"
	Review Name = "review"
	Cancel Name = "cancel"
)

// Sub-actions.
const (
	ActionAdd    = "add"
	ActionSearch = "search"
	ActionEdit   = "edit"
	ActionList   = "list"
	ActionShow   = "show"
	ActionStart  = "start"
)

// Usage hints shown back to the user.
const (
	UsageRest       = "usage: /rest add <name> <address> | /rest search <pattern> | /rest edit <id>"
	UsageRestAdd    = "usage: /rest add <name> <address>"
	UsageRestSearch = "usage: /rest search <pattern>"
	UsageRestEdit   = "usage: /rest edit <id>"
	UsageDish       = "usage: /dish list <restaurant id> | /dish add <restaurant id>"
	UsageReview     = "Usage: /review <Dish ID>"
	UsageReviewShow = "usage: /review show <Dish ID>"
)

var (
	ErrNotACommand     = errors.New("not a command")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrTooFewArguments = errors.New("too few arguments")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Command is a parsed command line. Args keeps the raw positional tokens
// after the command word; Action and ID are filled when the command has them.
type Command struct {
	Name   Name
	Action string
	Args   []string
	ID     int64

	// rest add
	RestaurantName    string
	RestaurantAddress string
	// rest search
	Pattern string
}

// ParseError carries the kind of failure and a hint for the user.
type ParseError struct {
	Kind  error
	Usage string
	Arg   string
}

func (e *ParseError) Error() string {
	switch {
	case e.Arg != "" && e.Usage != "":
		return fmt.Sprintf("%v %q, %s", e.Kind, e.Arg, e.Usage)
	case e.Arg != "":
		return fmt.Sprintf("%v %q", e.Kind, e.Arg)
	case e.Usage != "":
		return fmt.Sprintf("%v, %s", e.Kind, e.Usage)
	default:
		return e.Kind.Error()
	}
}

func (e *ParseError) Unwrap() error { return e.Kind }

// Hint is the text to send back to the user.
func (e *ParseError) Hint() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidArgument) && e.Arg != "":
		return fmt.Sprintf("%s is not a valid argument, %s", e.Arg, e.Usage)
	case e.Usage != "":
		return e.Usage
	default:
		return e.Error()
	}
}

// Reason is a short label for metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotACommand):
		return "not_a_command"
	case errors.Is(err, ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, ErrTooFewArguments):
		return "too_few_arguments"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "other"
	}
}

func tooFew(usage string) error {
	return &ParseError{Kind: ErrTooFewArguments, Usage: usage}
}

func invalid(arg, usage string) error {
	return &ParseError{Kind: ErrInvalidArgument, Usage: usage, Arg: arg}
}

// Parse splits line on single spaces and maps it to a Command.
// It never performs I/O.
func Parse(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "/") {
		return Command{}, ErrNotACommand
	}

	tokens := strings.Split(line, " ")
	word := strings.TrimPrefix(tokens[0], "/")
	if at := strings.IndexByte(word, '@'); at >= 0 {
		word = word[:at]
	}
	cmd := Command{Name: Name(word), Args: tokens[1:]}

	switch cmd.Name {
	case Help, Cancel:
		return cmd, nil
	case Rest:
		return parseRest(cmd)
	case Dish:
		return parseDish(cmd)
	case Review:
		return parseReview(cmd)
	default:
		return Command{}, &ParseError{Kind: ErrUnknownCommand, Arg: word}
	}
}

func parseRest(cmd Command) (Command, error) {
	args := cmd.Args
	if len(args) < 1 {
		return Command{}, tooFew(UsageRest)
	}
	cmd.Action = args[0]

	switch cmd.Action {
	case ActionAdd:
		if len(args) < 3 {
			return Command{}, tooFew(UsageRestAdd)
		}
		cmd.RestaurantName = args[1]
		cmd.RestaurantAddress = strings.Join(args[2:], " ")
		if strings.TrimSpace(cmd.RestaurantName) == "" || strings.TrimSpace(cmd.RestaurantAddress) == "" {
			return Command{}, tooFew(UsageRestAdd)
		}
	case ActionSearch:
		if len(args) < 2 || args[1] == "" {
			return Command{}, tooFew(UsageRestSearch)
		}
		cmd.Pattern = strings.Join(args[1:], " ")
	case ActionEdit:
		if len(args) < 2 {
			return Command{}, tooFew(UsageRestEdit)
		}
		id, err := parseID(args[1], UsageRestEdit)
		if err != nil {
			return Command{}, err
		}
		cmd.ID = id
	default:
		return Command{}, invalid(cmd.Action, UsageRest)
	}
	return cmd, nil
}

func parseDish(cmd Command) (Command, error) {
	args := cmd.Args
	if len(args) < 1 {
		return Command{}, tooFew(UsageDish)
	}
	cmd.Action = args[0]
	if cmd.Action != ActionList && cmd.Action != ActionAdd {
		return Command{}, invalid(cmd.Action, UsageDish)
	}
	if len(args) < 2 {
		return Command{}, tooFew(UsageDish)
	}
	id, err := parseID(args[1], UsageDish)
	if err != nil {
		return Command{}, err
	}
	cmd.ID = id
	return cmd, nil
}

func parseReview(cmd Command) (Command, error) {
	args := cmd.Args
	if len(args) < 1 {
		return Command{}, tooFew(UsageReview)
	}
	if args[0] == ActionShow {
		if len(args) < 2 {
			return Command{}, tooFew(UsageReviewShow)
		}
		id, err := parseID(args[1], UsageReviewShow)
		if err != nil {
			return Command{}, err
		}
		cmd.Action = ActionShow
		cmd.ID = id
		return cmd, nil
	}

	id, err := parseID(args[0], UsageReview)
	if err != nil {
		return Command{}, err
	}
	cmd.Action = ActionStart
	cmd.ID = id
	return cmd, nil
}

// parseID accepts a non-negative base-10 int64.
func parseID(s, usage string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, invalid(s, usage)
	}
	return id, nil
}
