package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Arg is one ordered (name, value) pair in an action's argument list,
// replacing the untyped argument lists of the source with a typed builder.
type Arg struct {
	Name  string
	Value string
}

// Action builds an ordered argument list for one SOAP action call.
type Action struct {
	Name string
	URN  string
	Args []Arg
}

// NewAction starts an Action builder for name on service urn.
func NewAction(name, urn string) *Action {
	return &Action{Name: name, URN: urn}
}

// With appends an ordered (name, value) argument and returns the receiver
// for chaining.
func (a *Action) With(name, value string) *Action {
	a.Args = append(a.Args, Arg{Name: name, Value: value})
	return a
}

const envelopeTemplate = `<?xml version="1.0" encoding="utf-8"?>` +
	`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">` +
	`<s:Body><u:%s xmlns:u="%s">%s</u:%s></s:Body></s:Envelope>`

// Marshal renders the action as a SOAP request body document. The document
// is owned by the caller and must not be reused across calls.
func (a *Action) Marshal() ([]byte, error) {
	var args bytes.Buffer
	for _, arg := range a.Args {
		var escaped bytes.Buffer
		if err := xml.EscapeText(&escaped, []byte(arg.Value)); err != nil {
			return nil, fmt.Errorf("escape arg %s: %w", arg.Name, err)
		}
		fmt.Fprintf(&args, "<%s>%s</%s>", arg.Name, escaped.String(), arg.Name)
	}
	body := fmt.Sprintf(envelopeTemplate, a.Name, a.URN, args.String(), a.Name)
	return []byte(body), nil
}

// faultEnvelope is used only to detect a SOAP Fault in a response body;
// successful responses are not further decoded by this client since each
// action's response fields are not consumed by the renderer controller.
type faultEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault *struct {
			FaultCode   string `xml:"faultcode"`
			FaultString string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// checkFault parses body looking for a SOAP Fault; malformed bodies are
// not themselves an error here (the HTTP status code already determined
// success/failure upstream).
func checkFault(body []byte) error {
	var env faultEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil
	}
	if env.Body.Fault != nil {
		return fmt.Errorf("%w: %s: %s", ErrActionFailed, env.Body.Fault.FaultCode, env.Body.Fault.FaultString)
	}
	return nil
}
