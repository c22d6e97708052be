package gx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OpenMode is GX_OPEN_MODE, what the content of an OpenParam identifies
type OpenMode int32

// open modes
const (
	OpenSN     OpenMode = 0
	OpenIP     OpenMode = 1
	OpenMAC    OpenMode = 2
	OpenIndex  OpenMode = 3
	OpenUserID OpenMode = 4
)

// AccessMode is GX_ACCESS_MODE
type AccessMode int32

// access modes
const (
	AccessReadOnly  AccessMode = 2
	AccessControl   AccessMode = 3
	AccessExclusive AccessMode = 4
)

var (
	// ErrInvalidSerialNumber is returned by BySN for an empty serial number
	ErrInvalidSerialNumber = errors.New("invalid camera serial number")

	// ErrInvalidIP is returned by ByIP for an empty address
	ErrInvalidIP = errors.New("invalid camera IP address")

	// ErrInvalidMAC is returned by ByMAC for an empty address
	ErrInvalidMAC = errors.New("invalid camera MAC address")

	// ErrInvalidIndex is returned by ByIndex for an index below 1
	ErrInvalidIndex = errors.New("invalid camera index")

	// ErrInvalidUserID is returned by ByUserID for an empty user ID
	ErrInvalidUserID = errors.New("invalid camera user ID")

	openModeNames = map[OpenMode]string{
		OpenSN:     "sn",
		OpenIP:     "ip",
		OpenMAC:    "mac",
		OpenIndex:  "index",
		OpenUserID: "userid",
	}

	accessModeNames = map[AccessMode]string{
		AccessReadOnly:  "readonly",
		AccessControl:   "control",
		AccessExclusive: "exclusive",
	}
)

func (m OpenMode) String() string {
	if s, ok := openModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("OpenMode(%d)", int32(m))
}

func (m AccessMode) String() string {
	if s, ok := accessModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("AccessMode(%d)", int32(m))
}

// ParseOpenMode converts a name (sn, ip, mac, index, userid) to an OpenMode
func ParseOpenMode(s string) (OpenMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, v := range openModeNames {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown open mode %q, must be one of sn, ip, mac, index, userid", s)
}

// ParseAccessMode converts a name (readonly, control, exclusive) to an AccessMode
func ParseAccessMode(s string) (AccessMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, v := range accessModeNames {
		if v == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown access mode %q, must be one of readonly, control, exclusive", s)
}

// OpenParam is GX_OPEN_PARAM: a content string (serial number, IP, MAC,
// index or user ID), what the content is, and how to access the device.
// It is a plain value and may be copied freely.
type OpenParam struct {
	content    string
	openMode   OpenMode
	accessMode AccessMode
}

// NewOpenParam is the generic constructor.  The named constructors BySN,
// ByIP, ByMAC, ByIndex and ByUserID validate their content and should be
// preferred.
func NewOpenParam(content string, om OpenMode, am AccessMode) OpenParam {
	return OpenParam{content: content, openMode: om, accessMode: am}
}

// BySN identifies a device by its serial number
func BySN(sn string, am AccessMode) (OpenParam, error) {
	if sn == "" {
		return OpenParam{}, ErrInvalidSerialNumber
	}
	return NewOpenParam(sn, OpenSN, am), nil
}

// ByIP identifies a device by its IP address
func ByIP(ip string, am AccessMode) (OpenParam, error) {
	if ip == "" {
		return OpenParam{}, ErrInvalidIP
	}
	return NewOpenParam(ip, OpenIP, am), nil
}

// ByMAC identifies a device by its MAC address
func ByMAC(mac string, am AccessMode) (OpenParam, error) {
	if mac == "" {
		return OpenParam{}, ErrInvalidMAC
	}
	return NewOpenParam(mac, OpenMAC, am), nil
}

// ByIndex identifies a device by its index in the last enumeration.
// Indices start from 1.
func ByIndex(index int, am AccessMode) (OpenParam, error) {
	if index < 1 {
		return OpenParam{}, ErrInvalidIndex
	}
	return NewOpenParam(strconv.Itoa(index), OpenIndex, am), nil
}

// ByUserID identifies a device by its user-assigned ID
func ByUserID(userid string, am AccessMode) (OpenParam, error) {
	if userid == "" {
		return OpenParam{}, ErrInvalidUserID
	}
	return NewOpenParam(userid, OpenUserID, am), nil
}

// ParseOpenParam builds an OpenParam from the names used in configuration
// files, e.g. ("sn", "KJ0190120004", "exclusive")
func ParseOpenParam(by, content, access string) (OpenParam, error) {
	om, err := ParseOpenMode(by)
	if err != nil {
		return OpenParam{}, err
	}
	am, err := ParseAccessMode(access)
	if err != nil {
		return OpenParam{}, err
	}
	switch om {
	case OpenSN:
		return BySN(content, am)
	case OpenIP:
		return ByIP(content, am)
	case OpenMAC:
		return ByMAC(content, am)
	case OpenUserID:
		return ByUserID(content, am)
	default:
		i, err := strconv.Atoi(content)
		if err != nil {
			return OpenParam{}, ErrInvalidIndex
		}
		return ByIndex(i, am)
	}
}

// Index returns the device index if OpenMode is OpenIndex, or 0 otherwise
func (p OpenParam) Index() uint32 {
	if p.openMode != OpenIndex {
		return 0
	}
	i, err := strconv.ParseUint(p.content, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(i)
}

// Content is the underlying content, which could be an SN, IP, MAC, index or user ID
func (p OpenParam) Content() string {
	return p.content
}

// OpenMode is what the content identifies
func (p OpenParam) OpenMode() OpenMode {
	return p.openMode
}

// AccessMode is how the device will be accessed once open
func (p OpenParam) AccessMode() AccessMode {
	return p.accessMode
}

func (p OpenParam) String() string {
	return fmt.Sprintf("%s=%s (%s)", p.openMode, p.content, p.accessMode)
}
