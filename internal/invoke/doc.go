// Package invoke runs external binaries (terraform, kubectl) and captures
// their exit status and output.
//
// All cluster provisioning and hardening operations are delegated to external
// tools; this package is the single place where those tools are spawned. The
// Runner interface exists so orchestration code can be tested against a fake
// without touching the real binaries.
package invoke
