package project

import "time"

// DefaultProjects builds the two example projects written on first run.
func DefaultProjects(now time.Time, newID func() string) []Project {
	day := 24 * time.Hour
	budgetA := 15000.0
	budgetB := 8500.0

	learning := Project{
		ID:          newID(),
		Title:       "AI Learning Companion",
		Description: "Adaptive tutoring assistant for first-year programming students.",
		Overview: "A conversational tutor that tracks each student's progress through the " +
			"introductory curriculum, suggests exercises that target weak areas and escalates " +
			"to human mentors when a student is stuck.",
		TechStack: ResolveTech([]string{"nextjs", "typescript", "python", "fastapi", "openai", "postgresql"}),
		TeamName:  "Team Catalyst",
		Progress:  65,
		Status:    resolveStatus(StatusDevelopment),
		ExpectedImpact: ExpectedImpact{
			Description: "Shorter time-to-competency for new programmers.",
			Metrics: []ImpactMetric{
				{Label: "Students supported", Value: "500", Unit: "students"},
				{Label: "Average time saved", Value: "30", Unit: "%"},
			},
		},
		Priority:    PriorityHigh,
		Tags:        []string{"education", "ai", "mentoring"},
		StartDate:   now.Add(-60 * day),
		CreatedAt:   now,
		LastUpdated: now,
		CreatedBy:   "system",
		Budget:      &budgetA,
		Resources:   []string{"GPU credits", "Course content from faculty"},
		Risks:       []string{"Model cost overruns", "Student data privacy"},
	}
	learningEnd := now.Add(60 * day)
	learning.EndDate = &learningEnd
	learning.Members = []TeamMember{
		{ID: newID(), Name: "Amina Wanjiru", Role: "Project Lead", Skills: []string{"product", "python"}},
		{ID: newID(), Name: "Brian Otieno", Role: "Frontend Developer", Skills: []string{"react", "typescript"}},
		{ID: newID(), Name: "Cynthia Mwangi", Role: "ML Engineer", Skills: []string{"nlp", "pytorch"}},
	}
	learning.LeaderID = learning.Members[0].ID
	learning.Milestones = []Milestone{
		{ID: newID(), Title: "Prototype", Description: "Chat flow for the first module", DueDate: now.Add(-30 * day), Completed: true},
		{ID: newID(), Title: "Pilot", Description: "Pilot with one cohort", DueDate: now.Add(30 * day)},
	}
	prototypeDone := now.Add(-32 * day)
	learning.Milestones[0].CompletedAt = &prototypeDone

	campus := Project{
		ID:          newID(),
		Title:       "Smart Campus Energy Monitor",
		Description: "Sensor network that reports classroom energy use in real time.",
		Overview: "Low-cost sensors in every lecture hall feed a dashboard that highlights " +
			"waste, schedules lighting and ventilation around the timetable and reports monthly savings.",
		TechStack: ResolveTech([]string{"arduino", "go", "react", "firebase"}),
		TeamName:  "GreenBytes",
		Progress:  0,
		Status:    resolveStatus(StatusPlanning),
		ExpectedImpact: ExpectedImpact{
			Description: "Lower electricity bills and a measurable carbon reduction.",
			Metrics: []ImpactMetric{
				{Label: "Energy reduction", Value: "20", Unit: "%"},
				{Label: "Buildings covered", Value: "4"},
			},
		},
		Priority:    PriorityMedium,
		Tags:        []string{"iot", "sustainability"},
		StartDate:   now.Add(14 * day),
		CreatedAt:   now,
		LastUpdated: now,
		CreatedBy:   "system",
		Budget:      &budgetB,
		Resources:   []string{"Sensor kits", "Facilities team access"},
		Risks:       []string{"Hardware delivery delays"},
		Milestones:  []Milestone{},
	}
	campus.Members = []TeamMember{
		{ID: newID(), Name: "David Kamau", Role: "Hardware Lead", Skills: []string{"embedded", "c"}},
		{ID: newID(), Name: "Esther Achieng", Role: "Backend Developer", Skills: []string{"go", "firebase"}},
	}
	campus.LeaderID = campus.Members[0].ID

	return []Project{learning, campus}
}
