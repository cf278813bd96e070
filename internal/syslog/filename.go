package syslog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FileName builds the collector's file name for a device and report date:
// yyyy-mm-dd.III.III.III.III.txt with every IP octet zero-padded to three
// digits. A malformed address is an error; callers skip the device.
func FileName(ip string, date time.Time) (string, error) {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return "", fmt.Errorf("invalid device ip %q", ip)
	}

	padded := make([]string, len(octets))
	for i, octet := range octets {
		n, err := strconv.Atoi(octet)
		if err != nil || n < 0 || n > 255 {
			return "", fmt.Errorf("invalid device ip %q", ip)
		}
		padded[i] = fmt.Sprintf("%03d", n)
	}

	return fmt.Sprintf("%s.%s.txt", date.Format("2006-01-02"), strings.Join(padded, ".")), nil
}
