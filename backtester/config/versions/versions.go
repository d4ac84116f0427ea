/*
versions handles strategy config upgrades and downgrades

  - Versions must not rely upon type definitions in the config pkg. Each version localises the
    keys it touches so later changes to config types cannot break it

  - Versions upgrade to the next version only. Never rewrite an old version, add a new one

  - Versions must be registered in import.go
*/
package versions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/buger/jsonparser"
	"github.com/quantbench/backtester/common"
	"github.com/quantbench/backtester/log"
)

// UseLatestVersion used as version param to Deploy to automatically use the latest version
const UseLatestVersion = math.MaxUint16

var (
	errRegisteringVersion    = errors.New("error registering config version")
	errVersionIncompatible   = errors.New("version does not implement ConfigVersion")
	errVersionSequence       = errors.New("version registered out of sequence")
	errNoVersions            = errors.New("error retrieving latest config version: No config versions are registered")
	errApplyingVersion       = errors.New("error applying version")
	errTargetVersion         = errors.New("target downgrade version is not available")
	errConfigVersionNegative = errors.New("config version is negative")
	errConfigVersionMax      = errors.New("config version is above max")
	errConfigVersionUnavail  = errors.New("config version is ahead of the latest registered version")
)

// ConfigVersion is a version that changes the strategy configuration
type ConfigVersion interface {
	UpgradeConfig(context.Context, []byte) ([]byte, error)
	DowngradeConfig(context.Context, []byte) ([]byte, error)
}

// manager contains versions registered during import init
type manager struct {
	m        sync.RWMutex
	versions []ConfigVersion
	errors   error
}

// Manager is a public instance of the config version manager
var Manager = &manager{}

// Deploy upgrades or downgrades the config to version. A config without a
// version key is treated as the legacy layout preceding version 0.
func (m *manager) Deploy(ctx context.Context, j []byte, version uint16) ([]byte, error) {
	if m.errors != nil {
		return j, m.errors
	}

	latest, err := m.latest()
	if err != nil {
		return j, err
	}

	target := latest
	if version != UseLatestVersion {
		target = int(version)
	}

	m.m.RLock()
	defer m.m.RUnlock()

	current64, err := jsonparser.GetInt(j, "version")
	current := int(current64)
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		current = -1
	case err != nil:
		return j, fmt.Errorf("%w `version`: %w", common.ErrGettingField, err)
	case current64 < 0:
		return j, fmt.Errorf("%w: %d", errConfigVersionNegative, current64)
	case current64 >= UseLatestVersion:
		return j, fmt.Errorf("%w: %d", errConfigVersionMax, current64)
	case current > latest:
		return j, fmt.Errorf("%w: %d > %d", errConfigVersionUnavail, current, latest)
	}

	switch {
	case target == current:
		return j, nil
	case target > latest:
		return j, fmt.Errorf("%w: %d", errTargetVersion, target)
	}

	for current != target {
		patchVersion := current + 1
		action := "upgrade"
		configMethod := ConfigVersion.UpgradeConfig
		next := patchVersion

		if target < current {
			patchVersion = current
			next = current - 1
			action = "downgrade"
			configMethod = ConfigVersion.DowngradeConfig
		}

		log.Infof(log.ConfigMgr, "Running %s to config version %v", action, next)

		if j, err = configMethod(m.versions[patchVersion], ctx, j); err != nil {
			return j, fmt.Errorf("%w %s to %v: %w", errApplyingVersion, action, next, err)
		}

		current = next

		if j, err = jsonparser.Set(j, []byte(strconv.Itoa(current)), "version"); err != nil {
			return j, fmt.Errorf("%w `version` during %s to %v: %w", common.ErrSettingField, action, next, err)
		}
	}

	log.Infoln(log.ConfigMgr, "Version management finished")

	return j, nil
}

// registerVersion takes instances of config versions and adds them to the registry
// Versions should be added sequentially without gaps, in import.go init
// Any errors will also added to the registry for reporting later
func (m *manager) registerVersion(v any) {
	m.m.Lock()
	defer m.m.Unlock()
	ver, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fmt.Sprintf("%T", v), "*v"), ".Version"))
	if err != nil {
		m.errors = common.AppendError(m.errors, fmt.Errorf("%w '%T': %w", errRegisteringVersion, v, err))
		return
	}
	cv, ok := v.(ConfigVersion)
	if !ok {
		m.errors = common.AppendError(m.errors, fmt.Errorf("%w: %v", errVersionIncompatible, ver))
		return
	}
	if len(m.versions) != ver {
		m.errors = common.AppendError(m.errors, fmt.Errorf("%w: %v", errVersionSequence, ver))
		return
	}
	m.versions = append(m.versions, cv)
}

// latest returns the highest version number
func (m *manager) latest() (int, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if len(m.versions) == 0 {
		return 0, errNoVersions
	}
	return len(m.versions) - 1, nil
}

// Latest returns the highest registered version
func (m *manager) Latest() (int, error) {
	return m.latest()
}
