package renderer

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"streamer/internal/profile"
)

// buildDIDL produces the single-item DIDL-Lite metadata document sent as
// CurrentURIMetaData, per the renderer controller's metadata rule: one
// <item> with dc:title, upnp:class, and a <res protocolInfo="...">uri</res>.
func buildDIDL(uri string, pi profile.ProtocolInfo) string {
	title := "Audio"
	class := "object.item.audioItem"
	if pi.Profile.Class == profile.ClassAudioVideo {
		title = "Video"
		class = "object.item.videoItem"
	}

	var escapedURI bytes.Buffer
	xml.EscapeText(&escapedURI, []byte(uri))

	return fmt.Sprintf(
		`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" `+
			`xmlns:dc="http://purl.org/dc/elements/1.1/" `+
			`xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">`+
			`<item id="0" parentID="-1" restricted="1">`+
			`<dc:title>%s</dc:title>`+
			`<upnp:class>%s</upnp:class>`+
			`<res protocolInfo="%s">%s</res>`+
			`</item></DIDL-Lite>`,
		title, class, pi.String(), escapedURI.String(),
	)
}

// extractTag is a minimal single-tag extractor for action response bodies
// whose only field of interest is one string element, avoiding a full
// struct per action response.
func extractTag(body []byte, tag string) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != tag {
			continue
		}
		var value string
		if err := dec.DecodeElement(&value, &start); err != nil {
			return "", false
		}
		return value, true
	}
}
