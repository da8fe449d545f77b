/*
Package logger wraps uber-go/zap behind a small interface with three
verbosity levels and structured fields. Every finditor component takes a
Logger; library callers that do not care about logs pass nil and get NewNop.

	0  info, warn, error
	1  adds debug: roots skipped, searches started and finished
	2  adds trace: every pruned directory and symlink decision

Lines are JSON by default:

	{"level":"info","ts":"2024-01-20T15:04:05.000Z","message":"Search completed","matches":42,"root":"/srv/data"}

Set Config.Console for zap's tab separated console encoding, which the CLI
uses when stderr is a terminal.
*/
package logger
