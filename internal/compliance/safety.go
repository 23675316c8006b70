package compliance

func safety() *Rule {
	return &Rule{
		Name:     "safety",
		Keywords: []string{"safety", "risk", "hazard"},
		Tags:     []string{"IEC-62304"},
	}
}
