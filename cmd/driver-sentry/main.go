package main

import "github.com/oshokin/driver-sentry/cmd/driver-sentry/cmd"

func main() {
	cmd.Execute()
}
