package main

import (
	"github.com/spf13/cobra"

	"github.com/open-control-systems/mdnssd/components/facade"
	"github.com/open-control-systems/mdnssd/components/mdnssd"
	"github.com/open-control-systems/mdnssd/components/transport"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mdnssd",
		Short: "Advertise and discover DNS-SD services over multicast DNS",
	}

	cmd.AddCommand(newPublishCmd(), newBrowseCmd())

	return cmd
}

// newHandle opens a multicast transport and wraps it in a facade.Handle.
// Callers are responsible for calling Destroy on the returned Handle.
func newHandle() (*facade.Handle, error) {
	trans, err := transport.NewMulticastTransport(transport.DNSCodec{})
	if err != nil {
		return nil, err
	}

	return facade.Create(trans, facade.Options{
		HostInfo: mdnssd.SystemHostInfo{},
		TXTCodec: mdnssd.DefaultTXTCodec{},
	}), nil
}
