package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Task    func(TaskArgs) (Result, error)
	Done    func(DoneArgs) (Result, error)
	Protein func(AmountArgs) (Result, error)
	Water   func(AmountArgs) (Result, error)
	Mind    func(AmountArgs) (Result, error)
	Pray    func(PrayArgs) (Result, error)
	Routine func(RoutineArgs) (Result, error)
	Workout func(PresetArgs) (Result, error)
	Copy    func(PresetArgs) (Result, error)
	Import  func(ImportArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeTask:
		return call(cmd.Type, handlers.Task, cmd.Task)
	case TypeDone:
		return call(cmd.Type, handlers.Done, cmd.Done)
	case TypeProtein:
		return call(cmd.Type, handlers.Protein, cmd.Amount)
	case TypeWater:
		return call(cmd.Type, handlers.Water, cmd.Amount)
	case TypeMind:
		return call(cmd.Type, handlers.Mind, cmd.Amount)
	case TypePray:
		return call(cmd.Type, handlers.Pray, cmd.Pray)
	case TypeRoutine:
		return call(cmd.Type, handlers.Routine, cmd.Routine)
	case TypeWorkout:
		return call(cmd.Type, handlers.Workout, cmd.Preset)
	case TypeCopy:
		return call(cmd.Type, handlers.Copy, cmd.Preset)
	case TypeImport:
		return call(cmd.Type, handlers.Import, cmd.Import)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func call[A any](typ Type, handler func(A) (Result, error), args *A) (Result, error) {
	if handler == nil {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
	}
	if args == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s command has no arguments", typ)}
	}
	return handler(*args)
}
