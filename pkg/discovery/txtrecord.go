package discovery

import (
	"fmt"
	"sort"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT creates the TXT records for a server.
func EncodeTXT(info *ServerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	if info.Path != "" {
		txt[TXTKeyPath] = info.Path
	}
	if info.Secure {
		txt[TXTKeySecure] = "1"
	}
	if info.Codec != "" {
		txt[TXTKeyCodec] = info.Codec
	}

	return txt
}

// DecodeTXT parses server TXT records into svc. Missing keys leave the
// defaults in place.
func DecodeTXT(txt TXTRecordMap, svc *Service) error {
	if path, ok := txt[TXTKeyPath]; ok {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%w: path %q", ErrInvalidTXTRecord, path)
		}
		svc.Path = path
	}

	if secure, ok := txt[TXTKeySecure]; ok {
		switch secure {
		case "1", "true", "":
			svc.Secure = true
		case "0", "false":
			svc.Secure = false
		default:
			return fmt.Errorf("%w: secure %q", ErrInvalidTXTRecord, secure)
		}
	}

	svc.Codec = CodecJSON
	if codec, ok := txt[TXTKeyCodec]; ok {
		switch codec {
		case CodecJSON, CodecCBOR:
			svc.Codec = codec
		default:
			return fmt.Errorf("%w: %q", ErrInvalidCodec, codec)
		}
	}

	return nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLength {
		return ErrInstanceNameTooLong
	}
	return nil
}
