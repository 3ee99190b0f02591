package gogogate2

// DoorStatus is the status of a door. The devices themselves only report
// the closed, opened and undefined values; opening and closing are
// synthetic statuses derived by the client from its own recent commands.
type DoorStatus string

const (
	DoorStatusClosed    DoorStatus = "closed"
	DoorStatusOpened    DoorStatus = "opened"
	DoorStatusUndefined DoorStatus = "undefined"

	// Synthetic statuses, never reported by the device.
	DoorStatusOpening DoorStatus = "opening"
	DoorStatusClosing DoorStatus = "closing"
)

// DoorMode is the configured mode of a door output.
type DoorMode string

const (
	DoorModeGarage DoorMode = "garage"
	DoorModePulse  DoorMode = "pulse"
	DoorModeOnOff  DoorMode = "onoff"
)

// Door is the state of a single door in an info response. Optional
// numeric fields are nil when the device reports no value or the reading
// is below the no-sensor sentinel.
type Door struct {
	DoorID      int
	Permission  bool
	Name        string
	Gate        bool
	Mode        DoorMode
	Status      DoorStatus
	Sensor      bool
	SensorID    string
	Camera      bool
	Events      *int
	Temperature *float64
	Voltage     *int

	// iSmartGate only.
	Enabled     bool
	APICode     string
	CustomImage bool
}

// Configured reports whether the door has been set up on the device.
// Unconfigured doors have no name and always report an undefined status.
func (d Door) Configured() bool {
	return d.Name != ""
}

// Network is the device network information.
type Network struct {
	IP string
}

// Wifi is the device wifi information.
type Wifi struct {
	SSID        string
	LinkQuality string
	Signal      string
}

// Outputs is the state of the three relay outputs of a GogoGate2 device.
type Outputs struct {
	Output1 bool
	Output2 bool
	Output3 bool
}

// InfoResponse is a snapshot of device and door state. Every snapshot
// carries exactly three doors; family-specific fields are zero for the
// other family.
type InfoResponse struct {
	User                string
	Model               string
	APIVersion          string
	RemoteAccessEnabled bool
	RemoteAccess        string
	FirmwareVersion     string

	Door1 Door
	Door2 Door
	Door3 Door

	Network Network
	Wifi    Wifi

	// GogoGate2 only.
	GogoGateName string
	APICode      string
	Outputs      *Outputs

	// iSmartGate only.
	PIN            int
	Lang           string
	ISmartGateName string
	NewFirmware    bool
}

// Doors returns the three doors of the snapshot in positional order.
func (r *InfoResponse) Doors() []Door {
	return []Door{r.Door1, r.Door2, r.Door3}
}

// ConfiguredDoors returns the doors that have been set up on the device.
func (r *InfoResponse) ConfiguredDoors() []Door {
	var doors []Door
	for _, door := range r.Doors() {
		if door.Configured() {
			doors = append(doors, door)
		}
	}
	return doors
}

// DoorByID returns the door with the given id, or nil.
func (r *InfoResponse) DoorByID(doorID int) *Door {
	for _, door := range r.Doors() {
		if door.DoorID == doorID {
			return &door
		}
	}
	return nil
}

// ConfiguredDoorByID returns the configured door with the given id, or
// nil.
func (r *InfoResponse) ConfiguredDoorByID(doorID int) *Door {
	for _, door := range r.ConfiguredDoors() {
		if door.DoorID == doorID {
			return &door
		}
	}
	return nil
}

// ActivateResponse reports whether a door pulse command was accepted.
type ActivateResponse struct {
	Result bool
}

// SensorResponse is a reading from a door's wireless sensor. Fields are
// nil when no sensor is attached.
type SensorResponse struct {
	Temperature *float64
	Voltage     *int
}
