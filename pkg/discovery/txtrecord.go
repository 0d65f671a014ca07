package discovery

import (
	"fmt"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeAgentTXT creates TXT records for agent discovery.
func EncodeAgentTXT(info *AgentInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyDeviceID] = info.DeviceID
	txt[TXTKeyVersion] = info.Version

	// Optional fields
	if info.Manufacturer != "" {
		txt[TXTKeyManufacturer] = info.Manufacturer
	}
	if info.Model != "" {
		txt[TXTKeyModel] = info.Model
	}
	if len(info.Capabilities) > 0 {
		txt[TXTKeyCapabilities] = strings.Join(info.Capabilities, ",")
	}

	return txt
}

// DecodeAgentTXT parses TXT records from agent discovery.
func DecodeAgentTXT(txt TXTRecordMap) (*AgentInfo, error) {
	info := &AgentInfo{}

	var ok bool
	info.DeviceID, ok = txt[TXTKeyDeviceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyDeviceID)
	}

	info.Version, ok = txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}

	// Optional fields
	info.Manufacturer = txt[TXTKeyManufacturer]
	info.Model = txt[TXTKeyModel]
	if caps := txt[TXTKeyCapabilities]; caps != "" {
		info.Capabilities = strings.Split(caps, ",")
	}

	return info, nil
}

// TXTRecordsToStrings converts a TXT record map to "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	out := make([]string, 0, len(txt))
	for k, v := range txt {
		out = append(out, k+"="+v)
	}
	return out
}

// StringsToTXTRecords parses "key=value" strings into a TXT record map.
// Entries without '=' are ignored.
func StringsToTXTRecords(records []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, r := range records {
		k, v, found := strings.Cut(r, "=")
		if !found {
			continue
		}
		txt[k] = v
	}
	return txt
}
