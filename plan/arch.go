package plan

import "strings"

// archOf returns the architecture component of a target triple.
func archOf(triple string) string {
	arch, _, _ := strings.Cut(triple, "-")
	return arch
}

// isX86 reports whether arch is a 32-bit x86 name (i386..i686).
func isX86(arch string) bool {
	return strings.HasPrefix(arch, "i") && strings.HasSuffix(arch, "86")
}

// KernelArch maps a target triple to the architecture directory name used
// by the Linux kernel source tree. Unknown architectures pass through
// unchanged on purpose: the kernel build fails with a clear message for a
// genuinely wrong name, while new architectures keep working without a
// mapping update.
func KernelArch(triple string) string {
	arch := archOf(triple)
	switch {
	case strings.HasPrefix(arch, "aarch64"):
		return "arm64"
	case strings.HasPrefix(arch, "arm"):
		return "arm"
	case isX86(arch):
		return "x86"
	case strings.HasPrefix(arch, "microblaze"):
		return "microblaze"
	case strings.HasPrefix(arch, "mips"):
		return "mips"
	case strings.HasPrefix(arch, "or1k"):
		return "openrisc"
	case strings.HasPrefix(arch, "powerpc"):
		return "powerpc"
	case strings.HasPrefix(arch, "riscv"):
		return "riscv"
	case strings.HasPrefix(arch, "s390"):
		return "s390"
	case strings.HasPrefix(arch, "sh"):
		return "sh"
	case strings.HasPrefix(arch, "x86_64"):
		return "x86_64"
	}
	return arch
}
