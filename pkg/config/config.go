package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// NewDefaultManager creates a manager over store with every pilot section
// registered, without loading it.
func NewDefaultManager(store Store) (*Manager, error) {
	manager := NewManager(store)
	if err := manager.RegisterSection(NewBrowserSection()); err != nil {
		return nil, err
	}
	if err := manager.RegisterSection(NewSelectionSection()); err != nil {
		return nil, err
	}
	return manager, nil
}

// Initialize creates and loads the global configuration manager.
// An empty configPath selects DefaultPath.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager, err := NewDefaultManager(store)
	if err != nil {
		return err
	}
	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetBrowser returns the browser section from global config.
// Returns nil if config is not initialized.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}
	return browserSection(Global())
}

// GetSelection returns the selection section from global config.
// Returns nil if config is not initialized.
func GetSelection() *SelectionSection {
	if !IsInitialized() {
		return nil
	}
	return selectionSection(Global())
}

func browserSection(m *Manager) *BrowserSection {
	section, ok := m.GetSection(SectionIDBrowser)
	if !ok {
		return nil
	}
	browser, _ := section.(*BrowserSection)
	return browser
}

func selectionSection(m *Manager) *SelectionSection {
	section, ok := m.GetSection(SectionIDSelection)
	if !ok {
		return nil
	}
	sel, _ := section.(*SelectionSection)
	return sel
}
