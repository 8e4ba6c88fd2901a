package main

import (
	"fmt"

	"github.com/shunt-io/shunt/internal/config"
	"github.com/shunt-io/shunt/internal/gateway"
	"github.com/shunt-io/shunt/internal/gateway/telnet"
	"github.com/shunt-io/shunt/internal/gateway/vsh"
	"github.com/shunt-io/shunt/internal/kind"
	"github.com/shunt-io/shunt/internal/kinds/port"
	"github.com/shunt-io/shunt/internal/kinds/vlan"
	"github.com/shunt-io/shunt/internal/logger"
	"github.com/shunt-io/shunt/internal/reconcile"
)

// newKindRegistry registers the built-in kinds.
func newKindRegistry(log *logger.Logger) (*kind.Registry, error) {
	reg := kind.NewRegistry(log)
	for _, def := range []kind.Definition{vlan.Definition(), port.Definition()} {
		if err := reg.Register(def); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// buildReconcilers wires one gateway-backed reconciler per manifest
// device. The returned closer hangs up any live connections and is
// always safe to call.
func buildReconcilers(manifest *config.Manifest, kinds *kind.Registry, log *logger.Logger) (map[string]*reconcile.Reconciler, func(), error) {
	gateways := make(map[string]gateway.Gateway, len(manifest.Devices))
	closeAll := func() {
		for _, gw := range gateways {
			if closer, ok := gw.(gateway.Closer); ok {
				_ = closer.Close()
			}
		}
	}

	reconcilers := make(map[string]*reconcile.Reconciler, len(manifest.Devices))
	for _, device := range manifest.Devices {
		gw, err := gatewayForDevice(device, log)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		gateways[device.Name] = gw
		reconcilers[device.Name] = reconcile.New(gw, kinds, log.WithField("device", device.Name))
	}

	return reconcilers, closeAll, nil
}

func gatewayForDevice(device config.Device, log *logger.Logger) (gateway.Gateway, error) {
	switch device.Driver {
	case "vsh":
		return vsh.New(vsh.Config{
			Binary:      device.Binary,
			Host:        device.Host,
			Username:    device.Username,
			PasswordEnv: device.PasswordEnv,
		}, log), nil
	case "telnet":
		return telnet.New(telnet.Config{
			Host:              device.Host,
			Port:              device.Port,
			Username:          device.Username,
			PasswordEnv:       device.PasswordEnv,
			EnablePasswordEnv: device.EnablePasswordEnv,
		}, log), nil
	default:
		return nil, fmt.Errorf("device %q: unknown driver %q", device.Name, device.Driver)
	}
}
