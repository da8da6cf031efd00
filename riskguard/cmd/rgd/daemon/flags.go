package daemon

const (
	// HomeFlag is the application home directory flag.
	HomeFlag = "home"

	// ForceFlag overrides an existing configuration on init.
	ForceFlag = "force"

	// RPCListenerFlag overrides the configured RPC listen address.
	RPCListenerFlag = "rpc-listener"
)
