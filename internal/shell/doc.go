// Package shell runs external tools on behalf of snek.
//
// Every subprocess snek starts (git, poetry, black, mkdocs, the browser
// opener) goes through the narrow Runner interface so that the workflow
// and task logic built on top can be exercised with FakeRunner instead of
// real binaries. A Runner reports a non-zero exit through Result.ExitCode;
// its error return is reserved for processes that could not run at all.
package shell
