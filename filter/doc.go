// Package filter selects decoded API records with expr-lang expressions.
//
// Record fields are available as variables, so a ticket can be matched with
//
//	status == "open" and priority in ["high", "urgent"] and hasTag("vip")
//
// Helper functions: parseTime, daysSince, daysAgo, before, after, now,
// contains, startsWith, endsWith, lower, upper and hasTag.
package filter
