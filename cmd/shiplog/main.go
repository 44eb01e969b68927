package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/bft-labs/shiplog/pkg/log"
)

const longHelp = `
shiplog records a vessel's navigation state from its NMEA 0183 / AIS feed.

Sentences arrive over TCP (one session per connection) or a serial port.
Each session keeps a current-state record and commits snapshots of it at a
rate chosen by the AIS navigational status: every 10s under way, every 2m at
anchor or moored.

Configuration: flags > SHIPLOG_* environment > config file > defaults.
`

var exampleUsage = strings.TrimSpace(`
  shiplog --listen-addr :3100 --state-dir /var/lib/shiplog
  shiplog --serial-port /dev/ttyUSB0 --serial-baud 38400 --interval 0=5s
  shiplog --config /etc/shiplog/config.yaml --sink http --sink-url https://logbook.example/api
  shiplog decode '!AIVDM,1,1,,A,13HOI:0P0000VOHLCnHQKwvL05Ip,0*23'
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	logger := log.NewZerologAdapter()

	root := newServeCommand(logger)
	root.Use = "shiplog"
	root.Short = "Record vessel state from an NMEA/AIS feed"
	root.Long = strings.TrimSpace(longHelp)
	root.Example = exampleUsage
	root.Version = fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH)
	root.SilenceUsage = true
	root.AddCommand(newDecodeCommand())

	if err := root.Execute(); err != nil {
		logger.Error("shiplog", log.Err(err))
		os.Exit(1)
	}
}
