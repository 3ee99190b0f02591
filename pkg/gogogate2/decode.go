package gogogate2

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// noneInt is the sentinel the firmware uses for "no sensor attached".
// Readings at or below this value are reported as absent.
const noneInt = -100000

// element is a generic XML tree node. Device responses are shallow
// documents and the two families use different schemas, so responses are
// decoded into a tree first and fields are pulled out by tag.
type element struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []element `xml:",any"`
}

func parseXML(text string) (*element, error) {
	var root element
	if err := xml.Unmarshal([]byte(text), &root); err != nil {
		return nil, err
	}
	return &root, nil
}

func (e *element) find(tag string) *element {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == tag {
			return &e.Children[i]
		}
	}
	return nil
}

func (e *element) findOrErr(tag string) (*element, error) {
	child := e.find(tag)
	if child == nil {
		return nil, &TagNotFoundError{Tag: tag}
	}
	return child, nil
}

// text returns the trimmed text of a child element. The second return is
// false when the element does not exist.
func (e *element) text(tag string) (string, bool) {
	child := e.find(tag)
	if child == nil {
		return "", false
	}
	return strings.TrimSpace(child.Text), true
}

func (e *element) textOrEmpty(tag string) string {
	text, _ := e.text(tag)
	return text
}

func (e *element) textOrErr(tag string) (string, error) {
	child, err := e.findOrErr(tag)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(child.Text)
	if text == "" {
		return "", &TextEmptyError{Tag: tag}
	}
	return text, nil
}

func (e *element) intOrErr(tag string) (int, error) {
	text, err := e.textOrErr(tag)
	if err != nil {
		return 0, err
	}
	value, convErr := strconv.Atoi(text)
	if convErr != nil {
		return 0, &UnexpectedTypeError{Value: text, Expected: "int"}
	}
	return value, nil
}

func (e *element) boolOrErr(tag string) (bool, error) {
	text, err := e.textOrErr(tag)
	if err != nil {
		return false, err
	}
	return parseBoolText(text), nil
}

func (e *element) optionalInt(tag string) *int {
	text, ok := e.text(tag)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &value
}

func (e *element) optionalFloat(tag string) *float64 {
	text, ok := e.text(tag)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &value
}

// parseBoolText decodes the boolean leaf convention used by the devices.
// The firmware is inconsistent about which token it uses per field, so
// "yes", "on" and "1" in any case are true and everything else is false.
func parseBoolText(text string) bool {
	switch strings.ToLower(text) {
	case "yes", "on", "1":
		return true
	}
	return false
}

func parseDoorStatus(text string) (DoorStatus, error) {
	switch status := DoorStatus(text); status {
	case DoorStatusClosed, DoorStatusOpened, DoorStatusUndefined:
		return status, nil
	}
	return "", &UnexpectedTypeError{Value: text, Expected: "DoorStatus"}
}

func parseDoorMode(text string) (DoorMode, error) {
	switch mode := DoorMode(text); mode {
	case DoorModeGarage, DoorModePulse, DoorModeOnOff:
		return mode, nil
	}
	return "", &UnexpectedTypeError{Value: text, Expected: "DoorMode"}
}

func decodeAPIError(e *element, table map[int]error) (*ApiError, error) {
	codeText, err := e.textOrErr("errorcode")
	if err != nil {
		return nil, err
	}
	code, convErr := strconv.Atoi(codeText)
	if convErr != nil {
		return nil, &UnexpectedTypeError{Value: codeText, Expected: "int"}
	}
	message, err := e.textOrErr("errormsg")
	if err != nil {
		return nil, err
	}
	return &ApiError{Code: code, Message: message, kind: table[code]}, nil
}

// decodeDoorCommon decodes the fields shared by both families.
func decodeDoorCommon(doorID int, e *element) (Door, error) {
	permission, err := e.boolOrErr("permission")
	if err != nil {
		return Door{}, err
	}
	modeText, err := e.textOrErr("mode")
	if err != nil {
		return Door{}, err
	}
	mode, err := parseDoorMode(modeText)
	if err != nil {
		return Door{}, err
	}
	statusText, err := e.textOrErr("status")
	if err != nil {
		return Door{}, err
	}
	status, err := parseDoorStatus(statusText)
	if err != nil {
		return Door{}, err
	}
	sensor, err := e.boolOrErr("sensor")
	if err != nil {
		return Door{}, err
	}
	camera, err := e.boolOrErr("camera")
	if err != nil {
		return Door{}, err
	}

	temperature := e.optionalFloat("temperature")
	if temperature != nil && *temperature <= noneInt {
		temperature = nil
	}
	voltage := e.optionalInt("voltage")
	if voltage != nil && *voltage <= noneInt {
		voltage = nil
	}

	return Door{
		DoorID:      doorID,
		Permission:  permission,
		Name:        e.textOrEmpty("name"),
		Mode:        mode,
		Status:      status,
		Sensor:      sensor,
		SensorID:    e.textOrEmpty("sensorid"),
		Camera:      camera,
		Events:      e.optionalInt("events"),
		Temperature: temperature,
		Voltage:     voltage,
	}, nil
}

func decodeGogoGate2Door(doorID int, e *element) (Door, error) {
	return decodeDoorCommon(doorID, e)
}

func decodeISmartGateDoor(doorID int, e *element) (Door, error) {
	door, err := decodeDoorCommon(doorID, e)
	if err != nil {
		return Door{}, err
	}
	gate, err := e.boolOrErr("gate")
	if err != nil {
		return Door{}, err
	}
	door.Gate = gate
	door.Enabled = parseBoolText(e.textOrEmpty("enabled"))
	door.APICode = e.textOrEmpty("apicode")
	door.CustomImage = parseBoolText(e.textOrEmpty("customimage"))
	return door, nil
}

// decodeDoors decodes the three positional door elements door1..door3.
func decodeDoors(root *element, decode func(int, *element) (Door, error)) ([3]Door, error) {
	var doors [3]Door
	for i := range doors {
		tag := "door" + strconv.Itoa(i+1)
		child, err := root.findOrErr(tag)
		if err != nil {
			return doors, err
		}
		doors[i], err = decode(i+1, child)
		if err != nil {
			return doors, fmt.Errorf("%s: %w", tag, err)
		}
	}
	return doors, nil
}

func decodeNetwork(e *element) (Network, error) {
	ip, err := e.textOrErr("ip")
	if err != nil {
		return Network{}, err
	}
	return Network{IP: ip}, nil
}

func decodeWifi(e *element) Wifi {
	return Wifi{
		SSID:        e.textOrEmpty("SSID"),
		LinkQuality: e.textOrEmpty("linkquality"),
		Signal:      e.textOrEmpty("signal"),
	}
}

func decodeOutputs(e *element) (*Outputs, error) {
	output1, err := e.boolOrErr("output1")
	if err != nil {
		return nil, err
	}
	output2, err := e.boolOrErr("output2")
	if err != nil {
		return nil, err
	}
	output3, err := e.boolOrErr("output3")
	if err != nil {
		return nil, err
	}
	return &Outputs{Output1: output1, Output2: output2, Output3: output3}, nil
}

func decodeInfoCommon(root *element, info *InfoResponse) error {
	var err error
	if info.User, err = root.textOrErr("user"); err != nil {
		return err
	}
	if info.Model, err = root.textOrErr("model"); err != nil {
		return err
	}
	if info.APIVersion, err = root.textOrErr("apiversion"); err != nil {
		return err
	}
	remoteAccessEnabled, err := root.boolOrErr("remoteaccessenabled")
	if err != nil {
		return err
	}
	info.RemoteAccessEnabled = remoteAccessEnabled
	if info.RemoteAccess, err = root.textOrErr("remoteaccess"); err != nil {
		return err
	}
	if info.FirmwareVersion, err = root.textOrErr("firmwareversion"); err != nil {
		return err
	}

	network, err := root.findOrErr("network")
	if err != nil {
		return err
	}
	if info.Network, err = decodeNetwork(network); err != nil {
		return err
	}
	wifi, err := root.findOrErr("wifi")
	if err != nil {
		return err
	}
	info.Wifi = decodeWifi(wifi)
	return nil
}

func decodeGogoGate2Info(root *element) (*InfoResponse, error) {
	info := &InfoResponse{}
	if err := decodeInfoCommon(root, info); err != nil {
		return nil, err
	}

	var err error
	if info.GogoGateName, err = root.textOrErr("gogogatename"); err != nil {
		return nil, err
	}
	if info.APICode, err = root.textOrErr("apicode"); err != nil {
		return nil, err
	}

	doors, err := decodeDoors(root, decodeGogoGate2Door)
	if err != nil {
		return nil, err
	}
	info.Door1, info.Door2, info.Door3 = doors[0], doors[1], doors[2]

	outputs, err := root.findOrErr("outputs")
	if err != nil {
		return nil, err
	}
	if info.Outputs, err = decodeOutputs(outputs); err != nil {
		return nil, err
	}
	return info, nil
}

func decodeISmartGateInfo(root *element) (*InfoResponse, error) {
	info := &InfoResponse{}
	if err := decodeInfoCommon(root, info); err != nil {
		return nil, err
	}

	var err error
	if info.PIN, err = root.intOrErr("pin"); err != nil {
		return nil, err
	}
	if info.Lang, err = root.textOrErr("lang"); err != nil {
		return nil, err
	}
	if info.ISmartGateName, err = root.textOrErr("ismartgatename"); err != nil {
		return nil, err
	}
	newFirmware, err := root.boolOrErr("newfirmware")
	if err != nil {
		return nil, err
	}
	info.NewFirmware = newFirmware

	doors, err := decodeDoors(root, decodeISmartGateDoor)
	if err != nil {
		return nil, err
	}
	info.Door1, info.Door2, info.Door3 = doors[0], doors[1], doors[2]
	return info, nil
}

func decodeActivate(root *element) (*ActivateResponse, error) {
	result, err := root.textOrErr("result")
	if err != nil {
		return nil, err
	}
	return &ActivateResponse{Result: strings.EqualFold(result, "ok")}, nil
}
