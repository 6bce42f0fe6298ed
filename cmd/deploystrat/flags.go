package main

type rootFlags struct {
	configPath string
	revision   string
	cwd        string
}

type planFlags struct {
	all   bool
	force bool
}

type applyFlags struct {
	force bool
}

type artifactsFlags struct {
	existOnly bool
}
