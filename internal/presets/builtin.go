package presets

import "github.com/sandeepkv93/dayloop/internal/model"

var builtins = []model.WorkoutPreset{
	{
		ID:      "upper-body-a",
		Name:    "Upper Body A",
		Icon:    "💪",
		Routine: model.RoutineA,
		Exercises: []model.Exercise{
			{Name: "Push-ups", Detail: "Chest to fist height", Sets: 3, Work: 40, Rest: 20},
			{Name: "Dumbbell Rows", Detail: "Alternate arms each set", Sets: 3, Work: 40, Rest: 20},
			{Name: "Shoulder Press", Detail: "Controlled descent", Sets: 3, Work: 40, Rest: 20},
			{Name: "Plank", Detail: "Neutral spine", Sets: 2, Work: 45, Rest: 15},
		},
	},
	{
		ID:      "lower-body-b",
		Name:    "Lower Body B",
		Icon:    "🦵",
		Routine: model.RoutineB,
		Exercises: []model.Exercise{
			{Name: "Squats", Detail: "Hips below knees", Sets: 3, Work: 45, Rest: 20},
			{Name: "Reverse Lunges", Detail: "Alternate legs", Sets: 3, Work: 40, Rest: 20},
			{Name: "Glute Bridges", Detail: "Pause at the top", Sets: 3, Work: 40, Rest: 15},
			{Name: "Calf Raises", Detail: "Slow negatives", Sets: 2, Work: 30, Rest: 15},
		},
	},
	{
		ID:   "core-express",
		Name: "Core Express",
		Icon: "🔥",
		Exercises: []model.Exercise{
			{Name: "Crunches", Sets: 2, Work: 30, Rest: 10},
			{Name: "Russian Twists", Sets: 2, Work: 30, Rest: 10},
			{Name: "Leg Raises", Sets: 2, Work: 30, Rest: 10},
			{Name: "Mountain Climbers", Sets: 1, Work: 45, Rest: 0},
		},
	},
}

// BuiltIn returns copies of the presets that ship with dayloop.
func BuiltIn() []model.WorkoutPreset {
	out := make([]model.WorkoutPreset, 0, len(builtins))
	for _, p := range builtins {
		out = append(out, p.Clone())
	}
	return out
}

func builtinByID(id string) (model.WorkoutPreset, bool) {
	for _, p := range builtins {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return model.WorkoutPreset{}, false
}
