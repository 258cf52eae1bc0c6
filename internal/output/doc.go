// Package output renders command results for the meme CLI.
//
// Every command prints through a Printer, which switches between styled
// human output and JSON (the --json flag):
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, output.IsTTY(cmd.OutOrStdout()))
//	printer.Success(map[string]any{"message": "Wrote meme.png", "path": path})
//	printer.Error(err)
//
// In JSON mode a success is the data map itself and an error is
// {"error": "message", "code": N}.
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad flag, bad color, unknown template, unreadable image
//	output.ExitSystemError // 2: I/O or encoder failure
//
// Commands return errors built with NewUserError or NewSystemErrorWithCause;
// main turns them into the process exit code with GetExitCode.
package output
