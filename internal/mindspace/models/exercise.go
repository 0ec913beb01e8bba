package models

// Exercise is a static guided wellness exercise.
type Exercise struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Duration     int      `json:"duration"`
	Difficulty   string   `json:"difficulty"`
	Instructions []string `json:"instructions"`
	Benefits     []string `json:"benefits"`
}

var Exercises = []Exercise{
	{
		ID:          "breathing-478",
		Title:       "4-7-8 Breathing",
		Description: "A calming breathing pattern that helps reduce anxiety and promote sleep.",
		Category:    "breathing",
		Duration:    5,
		Difficulty:  "beginner",
		Instructions: []string{
			"Sit comfortably with your back straight",
			"Exhale completely through your mouth",
			"Inhale through your nose for 4 counts",
			"Hold your breath for 7 counts",
			"Exhale through your mouth for 8 counts",
			"Repeat the cycle 3-4 times",
		},
		Benefits: []string{"Reduces anxiety", "Improves sleep", "Lowers heart rate"},
	},
	{
		ID:          "body-scan",
		Title:       "Body Scan Meditation",
		Description: "Progressive relaxation by paying attention to each part of the body.",
		Category:    "meditation",
		Duration:    15,
		Difficulty:  "beginner",
		Instructions: []string{
			"Lie down in a comfortable position",
			"Close your eyes and take a few deep breaths",
			"Focus on your toes and notice any sensations",
			"Slowly move your attention up through your body",
			"Release tension in each area as you go",
		},
		Benefits: []string{"Reduces stress", "Increases body awareness", "Promotes relaxation"},
	},
	{
		ID:          "gratitude-three",
		Title:       "Three Good Things",
		Description: "Write down three things that went well today and why.",
		Category:    "gratitude",
		Duration:    10,
		Difficulty:  "beginner",
		Instructions: []string{
			"Find a quiet moment at the end of the day",
			"Write down three things that went well",
			"For each, write why it happened",
			"Reflect on how these moments made you feel",
		},
		Benefits: []string{"Increases happiness", "Builds positive thinking", "Improves sleep"},
	},
	{
		ID:          "grounding-54321",
		Title:       "5-4-3-2-1 Grounding",
		Description: "Use your senses to anchor yourself in the present moment.",
		Category:    "mindfulness",
		Duration:    5,
		Difficulty:  "beginner",
		Instructions: []string{
			"Name 5 things you can see",
			"Name 4 things you can touch",
			"Name 3 things you can hear",
			"Name 2 things you can smell",
			"Name 1 thing you can taste",
		},
		Benefits: []string{"Eases panic and anxiety", "Brings focus to the present", "Can be done anywhere"},
	},
}

// ResourceCategory describes a browseable category on the resources page.
type ResourceCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var ResourceCategories = []ResourceCategory{
	{ID: "gratitude", Name: "Gratitude", Description: "Focus on appreciation and thankfulness", Icon: "🙏"},
	{ID: "reflection", Name: "Reflection", Description: "Look back and learn from experiences", Icon: "🪞"},
	{ID: "mindfulness", Name: "Mindfulness", Description: "Stay present and aware", Icon: "🧘"},
	{ID: "goal-setting", Name: "Goal Setting", Description: "Plan and work toward your aspirations", Icon: "🎯"},
	{ID: "self-care", Name: "Self Care", Description: "Nurture your wellbeing", Icon: "💆"},
	{ID: "relationships", Name: "Relationships", Description: "Explore connections with others", Icon: "💞"},
	{ID: "work", Name: "Work", Description: "Reflect on work and career", Icon: "💼"},
	{ID: "creativity", Name: "Creativity", Description: "Spark imagination and expression", Icon: "🎨"},
	{ID: "general", Name: "General", Description: "Open-ended writing", Icon: "📝"},
}
