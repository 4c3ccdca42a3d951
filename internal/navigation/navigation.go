package navigation

// Navigator points the host's primary display surface at a URL once
// the CLI server is ready. Implementations are provided by the host
// shell; failures are logged by the caller, never propagated.
type Navigator interface {
	Navigate(url string) error
}

// Func adapts a plain function to a Navigator.
type Func func(url string) error

func (f Func) Navigate(url string) error { return f(url) }

// Nop ignores navigation requests. Used by headless hosts.
type Nop struct{}

func (Nop) Navigate(string) error { return nil }
