package textgen

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) Generator { return c }),
)
