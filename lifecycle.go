package wxdata

// Close stops automatic rescans and removes the scratch area with any
// extracted files left in it. Readers returned by Open must be closed first.
func (c *client) Close() error {
	if err := c.AutoRescanOff(); err != nil {
		return err
	}
	return c.scratch.Close()
}
