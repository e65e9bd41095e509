package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// fakeRenderer is a minimal in-process stand-in for a UPnP AV media
// renderer: it serves a device description document and accepts SOAP
// actions on a single control endpoint, always replying success. It exists
// only so castsim can exercise the full session pipeline without a real
// device on the LAN.
type fakeRenderer struct {
	mu      sync.Mutex
	actions []string
	log     *slog.Logger
}

func newFakeRenderer(log *slog.Logger) *fakeRenderer {
	return &fakeRenderer{log: log}
}

func (f *fakeRenderer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/desc.xml", f.handleDescription)
	mux.HandleFunc("/control/avtransport", f.handleControl)
	mux.HandleFunc("/control/connmgr", f.handleConnMgr)
	mux.HandleFunc("/event/renderingcontrol", f.handleEvent)
	return mux
}

const descriptionXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <deviceType>urn:schemas-upnp-org:device:MediaRenderer:1</deviceType>
    <friendlyName>castsim fake renderer</friendlyName>
    <UDN>uuid:castsim-fake-renderer</UDN>
    <serviceList>
      <service>
        <serviceType>urn:schemas-upnp-org:service:AVTransport:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:AVTransport</serviceId>
        <controlURL>/control/avtransport</controlURL>
        <eventSubURL>/event/avtransport</eventSubURL>
        <SCPDURL>/scpd/avtransport.xml</SCPDURL>
      </service>
      <service>
        <serviceType>urn:schemas-upnp-org:service:ConnectionManager:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:ConnectionManager</serviceId>
        <controlURL>/control/connmgr</controlURL>
        <eventSubURL>/event/connmgr</eventSubURL>
        <SCPDURL>/scpd/connmgr.xml</SCPDURL>
      </service>
      <service>
        <serviceType>urn:schemas-upnp-org:service:RenderingControl:1</serviceType>
        <serviceId>urn:upnp-org:serviceId:RenderingControl</serviceId>
        <controlURL>/control/renderingcontrol</controlURL>
        <eventSubURL>/event/renderingcontrol</eventSubURL>
        <SCPDURL>/scpd/renderingcontrol.xml</SCPDURL>
      </service>
    </serviceList>
  </device>
</root>`

func (f *fakeRenderer) handleDescription(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/xml")
	fmt.Fprint(w, descriptionXML)
}

func (f *fakeRenderer) handleControl(w http.ResponseWriter, r *http.Request) {
	soapAction := r.Header.Get("SOAPAction")

	f.mu.Lock()
	f.actions = append(f.actions, soapAction)
	f.mu.Unlock()

	f.log.Debug("fake renderer received action", "soap_action", soapAction)

	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	fmt.Fprint(w, `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:Response/></s:Body></s:Envelope>`)
}

func (f *fakeRenderer) handleConnMgr(w http.ResponseWriter, r *http.Request) {
	f.log.Debug("fake renderer received GetProtocolInfo")
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	fmt.Fprint(w, `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>`+
		`<u:GetProtocolInfoResponse xmlns:u="urn:schemas-upnp-org:service:ConnectionManager:1">`+
		`<Source></Source>`+
		`<Sink>http-get:*:video/mp4:DLNA.ORG_PN=AVC_MP4_MP_SD,http-get:*:audio/mpeg:DLNA.ORG_PN=MP3</Sink>`+
		`</u:GetProtocolInfoResponse></s:Body></s:Envelope>`)
}

func (f *fakeRenderer) handleEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("SID", "uuid:castsim-fake-sid")
	w.Header().Set("TIMEOUT", "Second-300")
	w.WriteHeader(http.StatusOK)
}

func (f *fakeRenderer) Actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}
