// Package gogogate2 provides a client for GogoGate2 and iSmartGate
// garage door controllers over their encrypted HTTP+XML command API.
//
// # Basic Usage
//
//	ctx := context.Background()
//	client, err := gogogate2.NewISmartGateClient("192.168.1.20", "admin", "password")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	sent, err := client.OpenDoor(ctx, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// The client can be configured using functional options:
//
//	client, err := gogogate2.NewGogoGate2Client("192.168.1.20", "admin", "password",
//	    gogogate2.WithRequestTimeout(10*time.Second),
//	    gogogate2.WithTransitionTimeout(time.Minute),
//	    gogogate2.WithLogger(slog.Default()),
//	)
//
// # Door statuses
//
// The devices only report "opened", "closed" or "undefined"; there is no
// telemetry for a door in motion. The client keeps a short-lived record of
// doors it recently commanded and reports the synthetic "opening" and
// "closing" statuses until the device catches up or the record times out.
// The same record makes OpenDoor and CloseDoor idempotent: a command is
// never sent for a door already in, or already moving toward, the
// requested state. That matters because the underlying activate operation
// is a plain pulse, and pulsing a moving door stops it.
//
// # Protocol
//
// Commands are AES-128-CBC encrypted and sent as a query parameter to the
// device's api.php endpoint over plain HTTP. Successful responses are
// encrypted XML; error responses are plaintext XML. For security, isolate
// these devices on a dedicated VLAN.
package gogogate2
