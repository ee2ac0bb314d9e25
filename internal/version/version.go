package version

const (
	AppName        = "Server Actions"
	AppVersion     = "0.3.1"
	AppDescription = "Discord bot that runs configurable action chains from message buttons"
)
