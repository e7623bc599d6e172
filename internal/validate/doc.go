// Package validate runs advisory checks over parsed BluePrint documents.
//
// Validation is best-effort. The grammar accepts almost anything, so rules
// only point at patterns that are likely mistakes: repeated keys, empty
// blocks, half-written scenarios. Every finding is an hcl.Diagnostic that
// carries the ID of the rule that produced it in its Extra field; see RuleOf.
//
// Rules are registered on a Validator by ID. The built-in set is registered
// by New, and callers may add their own with Register before validating.
package validate
