package profile

import "strings"

const transportHTTPGet = "http-get"

// ParseProtocolInfo decodes a renderer's GetProtocolInfo Sink CSV value
// into a list of ProtocolInfo records. Each comma-separated entry is split
// on ":"; only 4-field entries with transport "http-get" are accepted, the
// rest are silently skipped (malformed renderer output is not fatal, per
// the propagation policy of non-fatal device-reported data).
func ParseProtocolInfo(sink string) []ProtocolInfo {
	var out []ProtocolInfo

	for entry := range strings.SplitSeq(sink, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		fields := strings.SplitN(entry, ":", 4)
		// an entry ending in ":" right after the mime still has 4 fields,
		// with an empty attribute bag.
		if len(fields) != 4 {
			continue
		}

		transport, network, mime, attrs := fields[0], fields[1], fields[2], fields[3]
		if transport != transportHTTPGet {
			continue
		}

		pi := ProtocolInfo{
			Transport: transport,
			Network:   network,
			MIME:      mime,
			PN:        attrValue(attrs, "DLNA.ORG_PN"),
			CI:        attrValue(attrs, "DLNA.ORG_CI"),
			OP:        attrValue(attrs, "DLNA.ORG_OP"),
			Flags:     attrValue(attrs, "DLNA.ORG_FLAGS"),
		}
		if pi.PN == "" {
			pi.PN = wildcard
		}

		for _, row := range Match(pi) {
			resolved := pi
			resolved.Profile = row
			out = append(out, resolved)
		}
	}

	return out
}

// attrValue locates "key=" inside a ";"-delimited attribute bag and slices
// to the next ";", per the locate-and-slice-to-next-semicolon rule.
func attrValue(attrs, key string) string {
	needle := key + "="
	idx := strings.Index(attrs, needle)
	if idx == -1 {
		return ""
	}
	rest := attrs[idx+len(needle):]
	if semi := strings.IndexByte(rest, ';'); semi != -1 {
		return rest[:semi]
	}
	return rest
}
