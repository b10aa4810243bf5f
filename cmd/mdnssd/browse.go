package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/mdnssd/components/mdnssd"
)

func newBrowseCmd() *cobra.Command {
	var (
		svcType  string
		protocol string
		subtypes []string
		one      bool
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Discover services over mDNS",
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := newHandle()
			if err != nil {
				return err
			}
			defer handle.Destroy()

			opts := mdnssd.BrowserOptions{
				Type:     svcType,
				Protocol: mdnssd.Protocol(protocol),
				Subtypes: subtypes,
			}

			if one {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()

				svc, err := handle.FindOne(ctx, opts)
				if err != nil {
					return err
				}

				printService(cmd, mdnssd.Event{Kind: mdnssd.EventUp, Service: svc})

				return nil
			}

			stop, err := handle.Find(opts, mdnssd.FuncEventHandler(func(event mdnssd.Event) {
				printService(cmd, event)
			}))
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			<-ctx.Done()

			return nil
		},
	}

	cmd.Flags().StringVar(&svcType, "type", "", "application protocol name to browse for; omit to enumerate all types")
	cmd.Flags().StringVar(&protocol, "protocol", string(mdnssd.ProtocolTCP), "transport protocol: tcp or udp")
	cmd.Flags().StringSliceVar(&subtypes, "subtype", nil, "restrict the browse to this subtype, repeatable")
	cmd.Flags().BoolVar(&one, "one", false, "exit after the first service is found")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "deadline for --one")

	return cmd
}

func printService(cmd *cobra.Command, event mdnssd.Event) {
	svc := event.Service

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s:%d\t%v\n",
		event.Kind, svc.FQDN, svc.Host, svc.Port, svc.TXT)
}
