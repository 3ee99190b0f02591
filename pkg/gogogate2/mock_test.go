package gogogate2

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

// mockDoor is mutable device-side door state.
type mockDoor struct {
	name   string
	status DoorStatus
}

// mockDevice emulates a device: the encrypted api.php command endpoint,
// the web UI login form and the session-guarded temperature endpoint.
// Like the real firmware it answers errors unencrypted and everything
// else encrypted.
type mockDevice struct {
	t *testing.T

	familyName string
	cipher     *Cipher
	token      string
	username   string
	password   string
	apiCode    string

	codeCorruptedData   int
	codeTokenNotSet     int
	codeInvalidToken    int
	codeCredentialsNone int
	codeCredentialsBad  int
	codeInvalidOption   int
	codeInvalidAPICode  int
	codeDoorNotSet      int
	codeInvalidDoor     int

	remoteAccessEnabled string
	doors               map[int]*mockDoor
	temps               map[int][2]string

	apiRequests   int
	loginAttempts int
	webAuthed     bool

	server *httptest.Server
}

func newMockDevice(t *testing.T, familyName string, apiCipher *Cipher, token, username, password string) *mockDevice {
	m := &mockDevice{
		t:          t,
		familyName: familyName,
		cipher:     apiCipher,
		token:      token,
		username:   username,
		password:   password,
		apiCode:    "api_code1",

		remoteAccessEnabled: "0",
		doors: map[int]*mockDoor{
			1: {name: "My Door 1", status: DoorStatusClosed},
			2: {name: "My Door 2", status: DoorStatusOpened},
			3: {name: "", status: DoorStatusUndefined},
		},
		temps: map[int][2]string{
			1: {"23456", "-100000"},
			2: {"-100000", "20"},
			3: {"", ""},
		},
	}

	if familyName == "gogogate2" {
		m.codeCorruptedData = GogoGate2CodeCorruptedData
		m.codeTokenNotSet = GogoGate2CodeTokenNotSet
		m.codeInvalidToken = GogoGate2CodeInvalidToken
		m.codeCredentialsNone = GogoGate2CodeCredentialsNotSet
		m.codeCredentialsBad = GogoGate2CodeCredentialsIncorrect
		m.codeInvalidOption = GogoGate2CodeInvalidOption
		m.codeInvalidAPICode = GogoGate2CodeInvalidAPICode
		m.codeDoorNotSet = GogoGate2CodeDoorNotSet
		m.codeInvalidDoor = GogoGate2CodeInvalidDoor
	} else {
		m.codeCorruptedData = ISmartGateCodeCorruptedData
		m.codeTokenNotSet = ISmartGateCodeTokenNotSet
		m.codeInvalidToken = ISmartGateCodeInvalidToken
		m.codeCredentialsNone = ISmartGateCodeCredentialsNotSet
		m.codeCredentialsBad = ISmartGateCodeCredentialsIncorrect
		m.codeInvalidOption = ISmartGateCodeInvalidOption
		m.codeInvalidAPICode = ISmartGateCodeInvalidAPICode
		m.codeDoorNotSet = ISmartGateCodeDoorNotSet
		m.codeInvalidDoor = ISmartGateCodeInvalidDoor
	}

	mux := http.NewServeMux()
	mux.HandleFunc(apiPath, m.handleAPI)
	mux.HandleFunc(indexPath, m.handleIndex)
	mux.HandleFunc(temperaturePath, m.handleTemperature)
	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)

	return m
}

func (m *mockDevice) host() string {
	return strings.TrimPrefix(m.server.URL, "http://")
}

func (m *mockDevice) setDoorStatus(doorID int, status DoorStatus) {
	m.doors[doorID].status = status
}

func (m *mockDevice) handleAPI(w http.ResponseWriter, r *http.Request) {
	m.apiRequests++

	query := r.URL.Query()
	decrypted, err := m.cipher.Decrypt(query.Get("data"))
	if err != nil {
		m.writeError(w, m.codeCorruptedData, "Error: corrupted data")
		return
	}

	var payload [5]string
	if err := json.Unmarshal([]byte(decrypted), &payload); err != nil {
		m.writeError(w, m.codeCorruptedData, "Error: corrupted data")
		return
	}
	username, password, option, arg1, arg2 := payload[0], payload[1], payload[2], payload[3], payload[4]

	if m.familyName == "ismartgate" {
		if !query.Has("token") {
			m.writeError(w, m.codeTokenNotSet, "Error: token not set")
			return
		}
		if query.Get("token") != m.token {
			m.writeError(w, m.codeInvalidToken, "Error: invalid token")
			return
		}
	}

	if username == "" || password == "" {
		m.writeError(w, m.codeCredentialsNone, "Error: login or password not set")
		return
	}
	if username != m.username || password != m.password {
		m.writeError(w, m.codeCredentialsBad, "Error: wrong login or password")
		return
	}

	switch option {
	case "info":
		m.writeEncrypted(w, m.infoXML())
	case "activate":
		m.handleActivate(w, arg1, arg2)
	default:
		m.writeError(w, m.codeInvalidOption, "Error: invalid option")
	}
}

func (m *mockDevice) handleActivate(w http.ResponseWriter, doorArg, apiCode string) {
	if apiCode != m.apiCode {
		m.writeError(w, m.codeInvalidAPICode, "Error: invalid API code")
		return
	}

	doorID, err := strconv.Atoi(doorArg)
	if err != nil {
		m.writeError(w, m.codeDoorNotSet, "Error: door not set")
		return
	}

	door, ok := m.doors[doorID]
	if !ok {
		m.writeError(w, m.codeInvalidDoor, "Error: invalid door")
		return
	}

	// A pulse toggles configured doors; unconfigured doors accept the
	// command without doing anything.
	if door.name != "" {
		if door.status == DoorStatusOpened {
			door.status = DoorStatusClosed
		} else {
			door.status = DoorStatusOpened
		}
	}

	m.writeEncrypted(w, "<response><result>OK</result></response>")
}

func (m *mockDevice) handleIndex(w http.ResponseWriter, r *http.Request) {
	m.webAuthed = false
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			m.loginAttempts++
			_, hasButton := r.PostForm[loginFormButton]
			m.webAuthed = hasButton &&
				r.PostForm.Get(loginFormUser) == m.username &&
				r.PostForm.Get(loginFormPassword) == m.password
		}
	}
	fmt.Fprint(w, "This always returns HTML with a HTTP 200 status code.")
}

func (m *mockDevice) handleTemperature(w http.ResponseWriter, r *http.Request) {
	if !m.webAuthed {
		fmt.Fprint(w, restrictedAccessMarker)
		return
	}

	doorID, err := strconv.Atoi(r.URL.Query().Get("door"))
	if err != nil || doorID < 1 || doorID > 3 {
		return
	}

	pair := m.temps[doorID]
	out, err := json.Marshal([2]string{pair[0], pair[1]})
	if err != nil {
		m.t.Errorf("marshal temperature pair: %v", err)
		return
	}
	w.Write(out)
}

func (m *mockDevice) writeError(w http.ResponseWriter, code int, message string) {
	fmt.Fprintf(w, "<response><error><errorcode>%d</errorcode><errormsg>%s</errormsg></error></response>", code, message)
}

func (m *mockDevice) writeEncrypted(w http.ResponseWriter, xmlText string) {
	fmt.Fprint(w, m.cipher.Encrypt(xmlText))
}

func (m *mockDevice) doorXML(doorID int) string {
	door := m.doors[doorID]

	var b strings.Builder
	fmt.Fprintf(&b, "<door%d>", doorID)
	b.WriteString("<permission>yes</permission>")
	fmt.Fprintf(&b, "<name>%s</name>", door.name)
	b.WriteString("<mode>garage</mode>")
	fmt.Fprintf(&b, "<status>%s</status>", door.status)
	b.WriteString("<sensor>yes</sensor>")
	b.WriteString("<sensorid>WIRE</sensorid>")
	b.WriteString("<camera>no</camera>")
	b.WriteString("<events>0</events>")
	switch doorID {
	case 1:
		b.WriteString("<temperature>16.3</temperature>")
		b.WriteString("<voltage>40</voltage>")
	case 2:
		b.WriteString("<temperature>-1000000</temperature>")
		b.WriteString("<voltage>40</voltage>")
	case 3:
		b.WriteString("<temperature>16.3</temperature>")
		b.WriteString("<voltage></voltage>")
	}
	if m.familyName == "ismartgate" {
		b.WriteString("<gate>no</gate>")
		b.WriteString("<enabled>yes</enabled>")
		fmt.Fprintf(&b, "<apicode>%s</apicode>", m.apiCode)
		b.WriteString("<customimage>no</customimage>")
	}
	fmt.Fprintf(&b, "</door%d>", doorID)
	return b.String()
}

func (m *mockDevice) infoXML() string {
	var b strings.Builder
	b.WriteString("<response>")
	fmt.Fprintf(&b, "<user>%s</user>", m.username)
	b.WriteString("<model>GG2</model>")
	b.WriteString("<apiversion>apiversion123</apiversion>")
	fmt.Fprintf(&b, "<remoteaccessenabled>%s</remoteaccessenabled>", m.remoteAccessEnabled)
	b.WriteString("<remoteaccess>abcdefg12345.my-gogogate.com</remoteaccess>")
	b.WriteString("<firmwareversion>761</firmwareversion>")

	if m.familyName == "gogogate2" {
		b.WriteString("<gogogatename>Home</gogogatename>")
		fmt.Fprintf(&b, "<apicode>%s</apicode>", m.apiCode)
	} else {
		b.WriteString("<pin>1234</pin>")
		b.WriteString("<lang>en</lang>")
		b.WriteString("<ismartgatename>Home</ismartgatename>")
		b.WriteString("<newfirmware>no</newfirmware>")
	}

	b.WriteString(m.doorXML(1))
	b.WriteString(m.doorXML(2))
	b.WriteString(m.doorXML(3))

	if m.familyName == "gogogate2" {
		b.WriteString("<outputs><output1>on</output1><output2>off</output2><output3>off</output3></outputs>")
	}

	b.WriteString("<network><ip>127.0.0.1</ip></network>")
	b.WriteString("<wifi><SSID>Wifi network</SSID><linkquality>80%</linkquality><signal>20</signal></wifi>")
	b.WriteString("</response>")
	return b.String()
}

// newGogoGate2TestPair starts a mock GogoGate2 device and a client
// pointed at it. The device accepts deviceUser/devicePass.
func newGogoGate2TestPair(t *testing.T, clientUser, clientPass, deviceUser, devicePass string, opts ...ClientOption) (*Client, *mockDevice) {
	apiCipher, err := NewGogoGate2Cipher()
	if err != nil {
		t.Fatalf("create cipher: %v", err)
	}
	device := newMockDevice(t, "gogogate2", apiCipher, "", deviceUser, devicePass)

	client, err := NewGogoGate2Client(device.host(), clientUser, clientPass, opts...)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(client.Close)
	return client, device
}

// newISmartGateTestPair starts a mock iSmartGate device and a client
// pointed at it. The device shares the client's cipher, mirroring the
// firmware which derives it from the stored account credentials.
func newISmartGateTestPair(t *testing.T, clientUser, clientPass, deviceUser, devicePass string, opts ...ClientOption) (*Client, *mockDevice) {
	apiCipher, err := NewISmartGateCipher(clientUser, clientPass)
	if err != nil {
		t.Fatalf("create cipher: %v", err)
	}
	device := newMockDevice(t, "ismartgate", apiCipher.Cipher, apiCipher.Token(), deviceUser, devicePass)

	client, err := NewISmartGateClient(device.host(), clientUser, clientPass, opts...)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(client.Close)
	return client, device
}

// testPairs runs a subtest against both device families.
func testPairs(t *testing.T, run func(t *testing.T, client *Client, device *mockDevice)) {
	t.Run("gogogate2", func(t *testing.T) {
		client, device := newGogoGate2TestPair(t, "fakeuser", "fakepassword", "fakeuser", "fakepassword")
		run(t, client, device)
	})
	t.Run("ismartgate", func(t *testing.T) {
		client, device := newISmartGateTestPair(t, "fakeuser", "fakepassword", "fakeuser", "fakepassword")
		run(t, client, device)
	})
}
