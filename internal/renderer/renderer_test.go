package renderer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"streamer/internal/profile"
	"streamer/internal/soap"
)

const rendererDescription = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <friendlyName>test renderer</friendlyName>
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

func newRendererServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var actions []string

	mux := http.NewServeMux()
	mux.HandleFunc("/desc.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rendererDescription)
	})
	mux.HandleFunc("/control/avtransport", func(w http.ResponseWriter, r *http.Request) {
		actions = append(actions, r.Header.Get("SOAPAction"))
		fmt.Fprint(w, `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:Response/></s:Body></s:Envelope>`)
	})
	mux.HandleFunc("/control/connmgr", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:GetProtocolInfoResponse xmlns:u="urn:schemas-upnp-org:service:ConnectionManager:1"><Source></Source><Sink>http-get:*:video/mp4:DLNA.ORG_PN=AVC_MP4_MP_SD</Sink></u:GetProtocolInfoResponse></s:Body></s:Envelope>`)
	})
	mux.HandleFunc("/event/renderingcontrol", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("SID", "uuid:test-sid")
		w.Header().Set("TIMEOUT", "Second-300")
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	return srv, &actions
}

func TestControllerSubscribe(t *testing.T) {
	t.Parallel()

	srv, _ := newRendererServer(t)
	defer srv.Close()

	client := soap.NewClient(srv.URL+"/desc.xml", srv.URL, nil)
	ctrl := NewController(client, nil)
	if err := ctrl.Subscribe(context.Background()); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if ctrl.sid == "" {
		t.Error("expected sid recorded after Subscribe")
	}
}

func TestControllerGetProtocolInfo(t *testing.T) {
	t.Parallel()

	srv, _ := newRendererServer(t)
	defer srv.Close()

	client := soap.NewClient(srv.URL+"/desc.xml", srv.URL, nil)
	ctrl := NewController(client, nil)

	got, err := ctrl.GetProtocolInfo(context.Background())
	if err != nil {
		t.Fatalf("GetProtocolInfo: %v", err)
	}
	if len(got) != 1 || got[0].Profile.Name != "AVC_MP4_MP_SD" {
		t.Errorf("GetProtocolInfo = %+v, want single AVC_MP4_MP_SD entry", got)
	}
}

func TestControllerSetAVTransportURIAndPlay(t *testing.T) {
	t.Parallel()

	srv, actions := newRendererServer(t)
	defer srv.Close()

	client := soap.NewClient(srv.URL+"/desc.xml", srv.URL, nil)
	ctrl := NewController(client, nil)

	pi := profile.ProtocolInfo{MIME: "video/mp4", Profile: profile.Profile{Name: "AVC_MP4_MP_SD", Class: profile.ClassAudioVideo}}
	if err := ctrl.SetAVTransportURI(context.Background(), "http://host/stream.mp4", pi); err != nil {
		t.Fatalf("SetAVTransportURI: %v", err)
	}
	if err := ctrl.Play(context.Background(), "1"); err != nil {
		t.Fatalf("Play: %v", err)
	}

	if len(*actions) != 2 {
		t.Fatalf("actions = %v, want 2 recorded", *actions)
	}
	if !strings.Contains((*actions)[0], "SetAVTransportURI") {
		t.Errorf("first action = %q, want SetAVTransportURI", (*actions)[0])
	}
	if !strings.Contains((*actions)[1], "Play") {
		t.Errorf("second action = %q, want Play", (*actions)[1])
	}
}

func TestControllerStopBestEffort(t *testing.T) {
	t.Parallel()

	srv, _ := newRendererServer(t)
	defer srv.Close()

	client := soap.NewClient(srv.URL+"/desc.xml", srv.URL, nil)
	ctrl := NewController(client, nil)
	if err := ctrl.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
