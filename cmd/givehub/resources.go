package main

import (
	"github.com/spf13/cobra"

	"github.com/thegivehub/givehub-go"
)

func addBodyFlags(cmd *cobra.Command, data *string, fields *[]string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "JSON request body, or @file to read it from a file")
	cmd.Flags().StringArrayVarP(fields, "field", "f", nil, "Body field as key=value (repeatable)")
}

func addFilterFlag(cmd *cobra.Command, filters *[]string) {
	cmd.Flags().StringArrayVar(filters, "filter", nil, "Query filter as key=value (repeatable)")
}

// bodyCmd builds a command that sends a JSON body assembled from flags.
func bodyCmd(a *app, use, short string, args cobra.PositionalArgs, call func(cmd *cobra.Command, args []string, body map[string]any) (givehub.Response, error)) *cobra.Command {
	var (
		data   string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(data, fields)
			if err != nil {
				return err
			}

			resp, err := call(cmd, args, body)
			if err != nil {
				return err
			}

			return a.print(resp)
		},
	}

	addBodyFlags(cmd, &data, &fields)

	return cmd
}

// filterCmd builds a command that sends key=value filters as the query.
func filterCmd(a *app, use, short string, args cobra.PositionalArgs, call func(cmd *cobra.Command, args []string, filters givehub.Params) (givehub.Response, error)) *cobra.Command {
	var raw []string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseParams(raw)
			if err != nil {
				return err
			}

			resp, err := call(cmd, args, filters)
			if err != nil {
				return err
			}

			return a.print(resp)
		},
	}

	addFilterFlag(cmd, &raw)

	return cmd
}

func simpleCmd(a *app, use, short string, args cobra.PositionalArgs, call func(cmd *cobra.Command, args []string) (givehub.Response, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := call(cmd, args)
			if err != nil {
				return err
			}

			return a.print(resp)
		},
	}
}

func campaignsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "campaigns", Aliases: []string{"campaign"}, Short: "Manage campaigns"}

	cmd.AddCommand(
		bodyCmd(a, "create", "Create a campaign", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, body map[string]any) (givehub.Response, error) {
				return a.client.Campaigns.Create(cmd.Context(), body)
			}),
		simpleCmd(a, "get <campaign-id>", "Fetch a campaign", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string) (givehub.Response, error) {
				return a.client.Campaigns.Get(cmd.Context(), args[0])
			}),
		filterCmd(a, "list", "List campaigns", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, filters givehub.Params) (givehub.Response, error) {
				return a.client.Campaigns.List(cmd.Context(), filters)
			}),
		bodyCmd(a, "update <campaign-id>", "Update a campaign", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, body map[string]any) (givehub.Response, error) {
				return a.client.Campaigns.Update(cmd.Context(), args[0], body)
			}),
		simpleCmd(a, "upload <campaign-id> <file>", "Attach a media file to a campaign", cobra.ExactArgs(2),
			func(cmd *cobra.Command, args []string) (givehub.Response, error) {
				return a.client.Campaigns.UploadMedia(cmd.Context(), args[0], args[1])
			}),
	)

	return cmd
}

func donationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "donations", Aliases: []string{"donation"}, Short: "Manage donations"}

	cmd.AddCommand(
		bodyCmd(a, "create", "Make a one-off donation", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, body map[string]any) (givehub.Response, error) {
				return a.client.Donations.Create(cmd.Context(), body)
			}),
		filterCmd(a, "list", "List donations", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, filters givehub.Params) (givehub.Response, error) {
				return a.client.Donations.List(cmd.Context(), filters)
			}),
		bodyCmd(a, "recurring", "Start a recurring donation", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, body map[string]any) (givehub.Response, error) {
				return a.client.Donations.CreateRecurring(cmd.Context(), body)
			}),
		simpleCmd(a, "cancel <subscription-id>", "Cancel a recurring donation", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string) (givehub.Response, error) {
				return a.client.Donations.CancelRecurring(cmd.Context(), args[0])
			}),
	)

	return cmd
}

func impactCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "impact", Short: "Record and read impact metrics"}

	cmd.AddCommand(
		bodyCmd(a, "create <campaign-id>", "Record impact metrics for a campaign", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, body map[string]any) (givehub.Response, error) {
				return a.client.Impact.CreateMetrics(cmd.Context(), args[0], body)
			}),
		bodyCmd(a, "update <metric-id>", "Update a metrics record", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, body map[string]any) (givehub.Response, error) {
				return a.client.Impact.UpdateMetrics(cmd.Context(), args[0], body)
			}),
		filterCmd(a, "get <campaign-id>", "Read a campaign's impact metrics", cobra.ExactArgs(1),
			func(cmd *cobra.Command, args []string, filters givehub.Params) (givehub.Response, error) {
				return a.client.Impact.GetMetrics(cmd.Context(), args[0], filters)
			}),
	)

	return cmd
}

func updatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "updates", Aliases: []string{"update"}, Short: "Post and read campaign updates"}

	cmd.AddCommand(
		bodyCmd(a, "create", "Post a campaign update", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, body map[string]any) (givehub.Response, error) {
				return a.client.Updates.Create(cmd.Context(), body)
			}),
		filterCmd(a, "list", "List campaign updates", cobra.NoArgs,
			func(cmd *cobra.Command, _ []string, filters givehub.Params) (givehub.Response, error) {
				return a.client.Updates.List(cmd.Context(), filters)
			}),
		simpleCmd(a, "upload <update-id> <file>", "Attach a media file to an update", cobra.ExactArgs(2),
			func(cmd *cobra.Command, args []string) (givehub.Response, error) {
				return a.client.Updates.UploadMedia(cmd.Context(), args[0], args[1])
			}),
	)

	return cmd
}
