// Package discovery advertises and locates wall servers on the local
// network over mDNS.
package discovery

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

const serviceType = "_pixelpaint._tcp"

// Advertise announces a wall server on the LAN. The returned server must be
// shut down by the caller.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, errors.Wrap(err, "get hostname failed")
	}
	service, err := mdns.NewMDNSService(
		host,
		serviceType,
		"",
		"",
		port,
		nil,
		[]string{"pixelpaint"},
	)
	if err != nil {
		return nil, errors.Wrap(err, "create mdns service failed")
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, errors.Wrap(err, "start mdns server failed")
	}
	logger.WithField("service", serviceType).Info("advertising on LAN")
	return server, nil
}

// Browse returns the host:port of the first wall server found on the LAN
// within the timeout.
func Browse(timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	go func() {
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()
	if err := mdns.Lookup(serviceType, entries); err != nil {
		return "", errors.Wrap(err, "mdns lookup failed")
	}
	select {
	case addr := <-found:
		return addr, nil
	case <-time.After(timeout):
		return "", ErrNoServerFound
	}
}
