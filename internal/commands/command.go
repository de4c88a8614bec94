package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/dayloop/internal/model"
)

type Type string

const (
	TypeTask    Type = "task"
	TypeDone    Type = "done"
	TypeProtein Type = "protein"
	TypeWater   Type = "water"
	TypeMind    Type = "mind"
	TypePray    Type = "pray"
	TypeRoutine Type = "routine"
	TypeWorkout Type = "workout"
	TypeCopy    Type = "copy"
	TypeImport  Type = "import"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type TaskArgs struct {
	Title string
}

// DoneArgs addresses a task by its 1-based position in today's list.
type DoneArgs struct {
	Index int
}

type AmountArgs struct {
	Amount int
}

type PrayArgs struct {
	Prayer string
	Type   model.PrayerType
}

type RoutineArgs struct {
	Routine model.Routine
}

type PresetArgs struct {
	ID string
}

type ImportArgs struct {
	Path string
}

type Command struct {
	Type    Type
	Raw     string
	Task    *TaskArgs
	Done    *DoneArgs
	Amount  *AmountArgs
	Pray    *PrayArgs
	Routine *RoutineArgs
	Preset  *PresetArgs
	Import  *ImportArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeTask:
		return parseTask(input, args)
	case TypeDone:
		return parseDone(input, args)
	case TypeProtein, TypeMind:
		return parseAmount(input, Type(head), args, false)
	case TypeWater:
		return parseAmount(input, TypeWater, args, true)
	case TypePray:
		return parsePray(input, args)
	case TypeRoutine:
		return parseRoutine(input, args)
	case TypeWorkout, TypeCopy:
		return parsePreset(input, Type(head), args)
	case TypeImport:
		return parseImport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseTask(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "task requires a title"}
	}
	return Command{Type: TypeTask, Raw: raw, Task: &TaskArgs{Title: title}}, nil
}

func parseDone(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a task number"}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid task number: %s", args[0])}
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Index: n}}, nil
}

// parseAmount accepts a signed integer so mistakes can be walked back.
func parseAmount(raw string, typ Type, args []string, optional bool) (Command, error) {
	if len(args) == 0 && optional {
		return Command{Type: typ, Raw: raw, Amount: &AmountArgs{Amount: 1}}, nil
	}
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires an amount", typ)}
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[0]), "g"))
	if err != nil || n == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid amount: %s", args[0])}
	}
	return Command{Type: typ, Raw: raw, Amount: &AmountArgs{Amount: n}}, nil
}

func parsePray(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "pray requires a prayer name and optional alone|jamat"}
	}
	name := strings.ToLower(args[0])
	if !model.IsDailyPrayer(name) {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown prayer: %s", args[0])}
	}
	typ := model.PrayerAlone
	if len(args) == 2 {
		typ = model.PrayerType(strings.ToLower(args[1]))
		if !typ.IsValid() {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("prayer type must be alone or jamat, got %s", args[1])}
		}
	}
	return Command{Type: TypePray, Raw: raw, Pray: &PrayArgs{Prayer: name, Type: typ}}, nil
}

func parseRoutine(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "routine requires A or B"}
	}
	r, err := model.ParseRoutine(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeRoutine, Raw: raw, Routine: &RoutineArgs{Routine: r}}, nil
}

func parsePreset(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a preset id", typ)}
	}
	return Command{Type: typ, Raw: raw, Preset: &PresetArgs{ID: args[0]}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	path := strings.TrimSpace(strings.Join(args, " "))
	if path == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: path}}, nil
}
