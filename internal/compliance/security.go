package compliance

// security matches the noun forms only; "authenticate" does not fire.
func security() *Rule {
	return &Rule{
		Name:     "security",
		Keywords: []string{"security", "authentication", "authorization"},
		Tags:     []string{"HIPAA-Security", "GDPR"},
	}
}
