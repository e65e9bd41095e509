// Package xmlutil provides small DOM-walk helpers over a UPnP device
// description document, shared by the SOAP action client.
package xmlutil

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Service is one <service> element under a device's <serviceList>.
type Service struct {
	ServiceType string `xml:"serviceType"`
	ServiceID   string `xml:"serviceId"`
	ControlURL  string `xml:"controlURL"`
	EventSubURL string `xml:"eventSubURL"`
	SCPDURL     string `xml:"SCPDURL"`
}

// Device mirrors a <device> element, including nested embedded devices.
type Device struct {
	DeviceType   string    `xml:"deviceType"`
	FriendlyName string    `xml:"friendlyName"`
	UDN          string    `xml:"UDN"`
	Services     []Service `xml:"serviceList>service"`
	Devices      []Device  `xml:"deviceList>device"`
}

// Root mirrors the top-level <root> element of a device description doc.
type Root struct {
	XMLName xml.Name `xml:"root"`
	Device  Device   `xml:"device"`
}

// ParseDeviceDescription decodes a device description document from r.
func ParseDeviceDescription(r io.Reader) (*Root, error) {
	var root Root
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse device description: %w", err)
	}
	return &root, nil
}

// FindService walks root/device (and nested embedded devices) looking for
// a <service> whose <serviceType> contains urnSubstring, per the
// "locate service children whose serviceType contains the target service
// URN as a substring" rule.
func FindService(root *Root, urnSubstring string) (Service, bool) {
	return findServiceIn(root.Device, urnSubstring)
}

func findServiceIn(d Device, urnSubstring string) (Service, bool) {
	for _, svc := range d.Services {
		if strings.Contains(svc.ServiceType, urnSubstring) {
			return svc, true
		}
	}
	for _, child := range d.Devices {
		if svc, ok := findServiceIn(child, urnSubstring); ok {
			return svc, true
		}
	}
	return Service{}, false
}
