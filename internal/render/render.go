package render

// Markdown renders an assistant reply for the terminal
func Markdown(content string, opts Options) (string, error) {
	r, err := renderers.acquire(opts)
	if err != nil {
		return "", err
	}
	defer renderers.release(opts, r)

	return r.Render(content)
}
