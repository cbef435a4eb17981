package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskCurlOutput(t *testing.T) {
	tests := []struct {
		name    string
		command string
		output  string
		want    string
	}{
		{name: "public address masked", command: "curl http://1.2.3.4/x", output: "connected to 1.2.3.4", want: "connected to *.*.*.*"},
		{name: "private address kept", command: "curl http://1.2.3.4/x", output: "via 192.168.1.5", want: "via 192.168.1.5"},
		{name: "non curl command untouched", command: "echo 1.2.3.4", output: "1.2.3.4", want: "1.2.3.4"},
		{name: "curl must be a word", command: "mycurl x", output: "8.8.8.8", want: "8.8.8.8"},
		{name: "case insensitive trigger", command: "CURL -s ifconfig.me", output: "203.0.113.9\n", want: "*.*.*.*\n"},
		{name: "echoed curl triggers", command: "echo curl 1.2.3.4", output: "curl 1.2.3.4", want: "curl *.*.*.*"},
		{
			name:    "mixed addresses keep order",
			command: "curl -v https://example.com",
			output:  "* Trying 93.184.216.34:443...\n* local 10.0.0.2 -> 127.0.0.1, 172.20.1.1, 172.32.0.1, 169.254.1.1",
			want:    "* Trying *.*.*.*:443...\n* local 10.0.0.2 -> 127.0.0.1, 172.20.1.1, *.*.*.*, 169.254.1.1",
		},
		{name: "out of range octet not an address", command: "curl x", output: "version 1.2.3.456", want: "version 1.2.3.456"},
		{name: "empty output", command: "curl x", output: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskCurlOutput(tt.command, tt.output))
		})
	}
}

func TestIsPrivateIPv4(t *testing.T) {
	private := []string{"10.0.0.1", "10.255.255.255", "172.16.0.1", "172.31.255.255", "192.168.0.1", "127.0.0.1", "169.254.10.20", "010.1.1.1"}
	public := []string{"1.2.3.4", "8.8.8.8", "172.15.0.1", "172.32.0.1", "192.169.0.1", "169.253.0.1", "0.0.0.0"}

	for _, ip := range private {
		assert.True(t, IsPrivateIPv4(ip), ip)
	}
	for _, ip := range public {
		assert.False(t, IsPrivateIPv4(ip), ip)
	}
	assert.False(t, IsPrivateIPv4("1.2.3"))
	assert.False(t, IsPrivateIPv4("a.b.c.d"))
	assert.False(t, IsPrivateIPv4("10.0.0.256"))
}
