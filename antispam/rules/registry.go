package rules

// Entry pairs a rule name with its implementation.
type Entry struct {
	Name  string
	Apply Apply
}

// registry lists every rule in its fixed evaluation order. Configuration can
// enable any subset, but enabled rules always run in this order.
var registry = []Entry{
	{"attachments", Attachments},
	{"burst", Burst},
	{"burst_shared", BurstShared},
	{"chars", Chars},
	{"discord_emojis", Emojis},
	{"duplicates", Duplicates},
	{"links", Links},
	{"mentions", Mentions},
	{"newlines", Newlines},
	{"role_mentions", RoleMentions},
}

// All returns every known rule in evaluation order.
func All() []Entry {
	return registry
}

// Known reports whether name refers to a registered rule. Used to validate
// configuration at startup.
func Known(name string) bool {
	for _, e := range registry {
		if e.Name == name {
			return true
		}
	}
	return false
}
