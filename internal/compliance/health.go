package compliance

func health() *Rule {
	return &Rule{
		Name:     "health",
		Keywords: []string{"patient", "medical", "health", "clinical"},
		Tags:     []string{"HIPAA", "FDA-21CFR"},
	}
}
