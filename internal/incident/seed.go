package incident

// SeedIncidents datos de ejemplo usados cuando el almacenamiento está vacío
func SeedIncidents() []Incident {
	return []Incident{
		{
			ID:                "1",
			IncidentNumber:    "INC-2024-001",
			Date:              "2024-05-10",
			VendorName:        "QuickFix Systems",
			TechnicianName:    "John Doe",
			OverallScore:      5,
			PunctualityScore:  5,
			DeliverablesScore: 4,
			Feedback:          "Excellent work, arrived exactly on time and fixed the router issues swiftly.",
		},
		{
			ID:                "2",
			IncidentNumber:    "INC-2024-002",
			Date:              "2024-05-12",
			VendorName:        "QuickFix Systems",
			TechnicianName:    "John Doe",
			OverallScore:      2,
			PunctualityScore:  1,
			DeliverablesScore: 2,
			Feedback:          "Technician was 2 hours late. Did not bring necessary tools, though eventually completed the task.",
		},
		{
			ID:                "3",
			IncidentNumber:    "INC-2024-003",
			Date:              "2024-05-15",
			VendorName:        "Reliable Infra",
			TechnicianName:    "Sarah Smith",
			OverallScore:      1,
			PunctualityScore:  1,
			DeliverablesScore: 1,
			IsAbandoned:       true,
			Feedback:          "Sarah left mid-job citing another appointment. Critical failure.",
		},
		{
			ID:                "4",
			IncidentNumber:    "INC-2024-004",
			Date:              "2024-05-16",
			VendorName:        "QuickFix Systems",
			TechnicianName:    "John Doe",
			OverallScore:      4,
			PunctualityScore:  4,
			DeliverablesScore: 5,
			Feedback:          "Solid performance. Clean work area.",
		},
		{
			ID:                "5",
			IncidentNumber:    "INC-2024-005",
			Date:              "2024-05-20",
			VendorName:        "Reliable Infra",
			TechnicianName:    "Sarah Smith",
			OverallScore:      3,
			PunctualityScore:  4,
			DeliverablesScore: 3,
			Feedback:          "Average work. Documentation was a bit messy but acceptable.",
		},
	}
}

// SeedVendors lista maestra inicial de proveedores
func SeedVendors() []MasterVendor {
	return []MasterVendor{
		{ID: "v1", Name: "QuickFix Systems"},
		{ID: "v2", Name: "Reliable Infra"},
	}
}

// SeedTechnicians lista maestra inicial de técnicos
func SeedTechnicians() []MasterTechnician {
	return []MasterTechnician{
		{ID: "t1", Name: "John Doe", VendorName: "QuickFix Systems"},
		{ID: "t2", Name: "Sarah Smith", VendorName: "Reliable Infra"},
	}
}
